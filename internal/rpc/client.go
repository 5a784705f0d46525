package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/quantscore/internal/eval"
)

// #region types
// CheckResult is the response of a successful CheckFormat call.
type CheckResult struct {
	Task    string
	Samples int
}

// RemoteError is a failed call together with the error kind reported by the server.
type RemoteError struct {
	Kind string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Kind == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Code returns the gRPC status code of the failed call.
func (e *RemoteError) Code() codes.Code { return status.Code(e.Err) }

// #endregion types

// #region client-struct
// Client wraps a gRPC connection to a Scoring server.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to addr without transport security, with message limits of
// DefaultMaxMessageBytes. Extra options are appended and take precedence, so
// tests can supply a custom dialer or tighter limits.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		WithMaxMessageSize(DefaultMaxMessageBytes),
	}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion client-struct

// #region evaluate
// Evaluate scores prediction against truth (both CSV text) for taskName.
func (c *Client) Evaluate(ctx context.Context, taskName, truth, prediction string) (eval.ScoreReport, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"task":       taskName,
		"truth":      truth,
		"prediction": prediction,
	})
	if err != nil {
		return eval.ScoreReport{}, fmt.Errorf("build request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.invoke(ctx, evaluateMethod, req, resp); err != nil {
		return eval.ScoreReport{}, fmt.Errorf("evaluate rpc: %w", err)
	}

	f := resp.GetFields()
	return eval.ScoreReport{
		Task:    f["task"].GetStringValue(),
		Samples: int(f["samples"].GetNumberValue()),
		Epsilon: f["epsilon"].GetNumberValue(),
		MAE:     f["mae"].GetNumberValue(),
		MRAE:    f["mrae"].GetNumberValue(),
	}, nil
}

// #endregion evaluate

// #region check-format
// CheckFormat validates submission (CSV text). An empty taskName lets the server
// infer the task.
func (c *Client) CheckFormat(ctx context.Context, taskName, submission string) (CheckResult, error) {
	fields := map[string]interface{}{"submission": submission}
	if taskName != "" {
		fields["task"] = taskName
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return CheckResult{}, fmt.Errorf("build request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := c.invoke(ctx, checkFormatMethod, req, resp); err != nil {
		return CheckResult{}, fmt.Errorf("check format rpc: %w", err)
	}

	f := resp.GetFields()
	return CheckResult{
		Task:    f["task"].GetStringValue(),
		Samples: int(f["samples"].GetNumberValue()),
	}, nil
}

// #endregion check-format

func (c *Client) invoke(ctx context.Context, method string, req, resp *structpb.Struct) error {
	var trailer metadata.MD
	if err := c.conn.Invoke(ctx, method, req, resp, grpc.Trailer(&trailer)); err != nil {
		var kind string
		if v := trailer.Get(ErrorKindKey); len(v) > 0 {
			kind = v[0]
		}
		return &RemoteError{Kind: kind, Err: err}
	}
	return nil
}
