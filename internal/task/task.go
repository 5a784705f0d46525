package task

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// #region registry
// Registry is an immutable lookup of task descriptors by name.
type Registry struct {
	byName map[string]Descriptor
	names  []string
}

// NewRegistry validates the descriptors and builds a registry from them.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("task %q: %w", d.Name, err)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("task %q registered twice", d.Name)
		}
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Default returns the four benchmark tasks. Binary tasks (T1x) have 2 classes,
// multiclass tasks (T2x) have 28; size A means 1000 samples of 250 documents,
// size B means 5000 samples of 1000 documents.
func Default() *Registry {
	r, err := NewRegistry(
		Descriptor{Name: "T1A", Classes: 2, Samples: 1000, DocsPerSample: 250},
		Descriptor{Name: "T1B", Classes: 2, Samples: 5000, DocsPerSample: 1000},
		Descriptor{Name: "T2A", Classes: 28, Samples: 1000, DocsPerSample: 250},
		Descriptor{Name: "T2B", Classes: 28, Samples: 5000, DocsPerSample: 1000},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// #endregion registry

// #region lookup
// Resolve returns the descriptor registered under name.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, &UnknownTaskError{Name: name, Known: r.Names()}
	}
	return d, nil
}

// Names returns the registered task names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Infer picks the task matching a table shape. When the class count matches but
// no task has exactly this many samples, the candidate with the closest sample
// count is returned with ok=false so that validation reports the size problem.
func (r *Registry) Infer(classes, samples int) (Descriptor, bool) {
	var best Descriptor
	found := false
	for _, name := range r.names {
		d := r.byName[name]
		if d.Classes != classes {
			continue
		}
		if d.Samples == samples {
			return d, true
		}
		if !found || absDiff(d.Samples, samples) < absDiff(best.Samples, samples) {
			best = d
			found = true
		}
	}
	return best, false
}

// #endregion lookup

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
