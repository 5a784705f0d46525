package rpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/quantscore/internal/eval"
	"github.com/danielpatrickdp/quantscore/internal/metrics"
	"github.com/danielpatrickdp/quantscore/internal/prevalence"
	"github.com/danielpatrickdp/quantscore/internal/task"
)

// ErrorKindKey is the trailer key carrying eval.ErrorKind of a failed call.
const ErrorKindKey = "quantscore-error-kind"

// unresolvedTask labels metrics for requests whose task could not be determined.
const unresolvedTask = "unknown"

// #region server-struct
// Server implements ScoringServer on top of an eval.Harness.
type Server struct {
	harness *eval.Harness
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewServer creates a Server. m may be nil; a nil logger uses slog.Default().
func NewServer(h *eval.Harness, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{harness: h, metrics: m, logger: logger}
}

// #endregion server-struct

// #region evaluate
// Evaluate scores the prediction text against the truth text.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	start := time.Now()
	taskName := stringField(req, "task")
	truthText := stringField(req, "truth")
	predText := stringField(req, "prediction")
	if taskName == "" || truthText == "" || predText == "" {
		return nil, status.Error(codes.InvalidArgument, "task, truth and prediction are required")
	}

	label := unresolvedTask
	report, err := func() (eval.ScoreReport, error) {
		d, err := s.harness.Registry().Resolve(taskName)
		if err != nil {
			return eval.ScoreReport{}, err
		}
		label = d.Name
		truth, err := prevalence.Read(strings.NewReader(truthText), "truth")
		if err != nil {
			return eval.ScoreReport{}, err
		}
		pred, err := prevalence.Read(strings.NewReader(predText), "prediction")
		if err != nil {
			return eval.ScoreReport{}, err
		}
		return s.harness.Score(d, truth, pred)
	}()
	s.metrics.Observe(label, start, err)
	if err != nil {
		return nil, s.fail(ctx, "evaluate", err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"task":    report.Task,
		"samples": report.Samples,
		"epsilon": report.Epsilon,
		"mae":     report.MAE,
		"mrae":    report.MRAE,
	})
}

// #endregion evaluate

// #region check-format
// CheckFormat validates a submission text against the named or inferred task.
func (s *Server) CheckFormat(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	start := time.Now()
	taskName := stringField(req, "task")
	text := stringField(req, "submission")
	if text == "" {
		return nil, status.Error(codes.InvalidArgument, "submission is required")
	}

	label := unresolvedTask
	tbl, err := prevalence.Read(strings.NewReader(text), "submission")
	var d task.Descriptor
	if err == nil {
		d, err = s.harness.CheckTable(tbl, taskName)
		if d.Name != "" {
			label = d.Name
		}
	}
	s.metrics.Observe(label, start, err)
	if err != nil {
		return nil, s.fail(ctx, "check_format", err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"task":    d.Name,
		"samples": tbl.Len(),
		"passed":  true,
	})
}

// #endregion check-format

// #region errors
// fail logs err, attaches its kind as a trailer and converts it to a status.
func (s *Server) fail(ctx context.Context, op string, err error) error {
	kind := eval.ErrorKind(err)
	if setErr := grpc.SetTrailer(ctx, metadata.Pairs(ErrorKindKey, kind)); setErr != nil {
		s.logger.Debug("set trailer failed", "error", setErr)
	}
	if kind == eval.KindInternal {
		s.logger.Error("request failed", "op", op, "error", err)
	} else {
		s.logger.Info("submission rejected", "op", op, "kind", kind, "error", err)
	}
	return toStatus(err)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, task.ErrUnknownTask):
		return status.Error(codes.NotFound, err.Error())
	case eval.IsUserError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// #endregion errors
