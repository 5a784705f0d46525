package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// ServiceName is the fully qualified gRPC service name.
const ServiceName = "quantscore.v1.Scoring"

const (
	evaluateMethod    = "/" + ServiceName + "/Evaluate"
	checkFormatMethod = "/" + ServiceName + "/CheckFormat"
)

// DefaultMaxMessageBytes bounds request and response size. An Evaluate request
// for a 5000x28 task carries two tables of about 3 MB each, which is over the
// 4 MiB gRPC default.
const DefaultMaxMessageBytes = 32 << 20

// ServerOptions returns the message size limits for a Scoring server.
func ServerOptions(maxBytes int) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.MaxRecvMsgSize(maxBytes),
		grpc.MaxSendMsgSize(maxBytes),
	}
}

// WithMaxMessageSize sets the client-side send and receive limits.
func WithMaxMessageSize(maxBytes int) grpc.DialOption {
	return grpc.WithDefaultCallOptions(
		grpc.MaxCallRecvMsgSize(maxBytes),
		grpc.MaxCallSendMsgSize(maxBytes),
	)
}

// Request and response messages are structpb.Struct values with these fields:
//
//	Evaluate     {task, truth, prediction} -> {task, samples, epsilon, mae, mrae}
//	CheckFormat  {task?, submission}       -> {task, samples, passed}
//
// truth, prediction and submission carry the CSV submission text.
type ScoringServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckFormat(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterScoringServer attaches srv to a gRPC server.
func RegisterScoringServer(s grpc.ServiceRegistrar, srv ScoringServer) {
	s.RegisterService(&ScoringServiceDesc, srv)
}

// ScoringServiceDesc describes the Scoring service for grpc.Server.
var ScoringServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScoringServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "CheckFormat", Handler: checkFormatHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "quantscore/v1/scoring",
}

// #endregion service-desc

// #region handlers
func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func checkFormatHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ScoringServer).CheckFormat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkFormatMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ScoringServer).CheckFormat(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion handlers
