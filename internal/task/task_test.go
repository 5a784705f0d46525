package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryShapes(t *testing.T) {
	r := Default()

	cases := []struct {
		name    string
		classes int
		samples int
	}{
		{"T1A", 2, 1000},
		{"T1B", 2, 5000},
		{"T2A", 28, 1000},
		{"T2B", 28, 5000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := r.Resolve(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.classes, d.Classes)
			assert.Equal(t, tc.samples, d.Samples)
		})
	}
	assert.Equal(t, []string{"T1A", "T1B", "T2A", "T2B"}, r.Names())
}

func TestResolveUnknownTask(t *testing.T) {
	_, err := Default().Resolve("T3A")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTask))

	var ute *UnknownTaskError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "T3A", ute.Name)
	assert.Contains(t, err.Error(), "T1A")
}

func TestDefaultEpsilon(t *testing.T) {
	a, _ := Default().Resolve("T1A")
	b, _ := Default().Resolve("T2B")
	assert.InDelta(t, 1.0/500, a.DefaultEpsilon(), 1e-15)
	assert.InDelta(t, 1.0/2000, b.DefaultEpsilon(), 1e-15)
}

func TestNewRegistryRejectsInvalidDescriptors(t *testing.T) {
	_, err := NewRegistry(Descriptor{Name: "bad", Classes: 1, Samples: 10, DocsPerSample: 5})
	assert.Error(t, err, "one class is not a quantification task")

	_, err = NewRegistry(Descriptor{Classes: 2, Samples: 10, DocsPerSample: 5})
	assert.Error(t, err, "name is required")

	d := Descriptor{Name: "X", Classes: 2, Samples: 3, DocsPerSample: 1}
	_, err = NewRegistry(d, d)
	assert.ErrorContains(t, err, "registered twice")
}

func TestInfer(t *testing.T) {
	r := Default()

	d, ok := r.Infer(2, 5000)
	assert.True(t, ok)
	assert.Equal(t, "T1B", d.Name)

	d, ok = r.Infer(28, 1000)
	assert.True(t, ok)
	assert.Equal(t, "T2A", d.Name)

	// wrong size: closest candidate, not ok
	d, ok = r.Infer(2, 999)
	assert.False(t, ok)
	assert.Equal(t, "T1A", d.Name)

	d, ok = r.Infer(5, 1000)
	assert.False(t, ok)
	assert.Empty(t, d.Name)
}
