package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// ServiceName is the fully qualified gRPC service name.
const ServiceName = "vrcore.Evaluator"

// Method names of the Evaluator service.
const (
	MethodSystemCurve = "SystemCurve"
	MethodGreedyTrace = "GreedyTrace"
	MethodPrioritize  = "Prioritize"
	MethodProgram     = "Program"
)

// EvaluatorServer is the server side of vrcore.Evaluator. Requests and responses
// are structpb.Struct messages; the field layout is documented per method on Server.
type EvaluatorServer interface {
	SystemCurve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GreedyTrace(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Prioritize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Program(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes vrcore.Evaluator for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodSystemCurve, Handler: unaryHandler(MethodSystemCurve, EvaluatorServer.SystemCurve)},
		{MethodName: MethodGreedyTrace, Handler: unaryHandler(MethodGreedyTrace, EvaluatorServer.GreedyTrace)},
		{MethodName: MethodPrioritize, Handler: unaryHandler(MethodPrioritize, EvaluatorServer.Prioritize)},
		{MethodName: MethodProgram, Handler: unaryHandler(MethodProgram, EvaluatorServer.Program)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vrcore/evaluator.proto",
}

// RegisterEvaluatorServer registers srv on s.
func RegisterEvaluatorServer(s grpc.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryCall func(EvaluatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EvaluatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(EvaluatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion service-desc
