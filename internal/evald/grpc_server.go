package evald

import (
	"context"
	"errors"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/materials"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/simulator"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "voxcraft.v1.Evaluator"

const (
	evaluateMethod = "/" + ServiceName + "/Evaluate"
	describeMethod = "/" + ServiceName + "/Describe"
)

// EvaluatorServer is the server side of voxcraft.v1.Evaluator. Messages are
// structpb.Struct values.
type EvaluatorServer interface {
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Describe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// EvaluatorServiceDesc describes voxcraft.v1.Evaluator for grpc.Server.
var EvaluatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "Describe", Handler: describeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "voxcraft/v1/evaluator.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EvaluatorServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func describeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluatorServer).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: describeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EvaluatorServer).Describe(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCServer implements EvaluatorServer on top of a Service.
type GRPCServer struct {
	svc *Service
}

// NewGRPCServer creates a GRPCServer for svc.
func NewGRPCServer(svc *Service) *GRPCServer {
	return &GRPCServer{svc: svc}
}

// Register adds the evaluator and a health service reporting it as serving.
func (s *GRPCServer) Register(gs *grpc.Server) *health.Server {
	gs.RegisterService(&EvaluatorServiceDesc, s)
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

func (s *GRPCServer) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	genome, err := genomeFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	eval, err := s.svc.Evaluate(ctx, genome)
	if err != nil {
		return nil, status.Error(errorCode(err), err.Error())
	}
	resp, err := structpb.NewStruct(map[string]any{
		"id":         eval.ID,
		"run_index":  eval.RunIndex,
		"fitness":    eval.Fitness,
		"descriptor": floatsToAny(eval.Descriptor),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func (s *GRPCServer) Describe(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	d := s.svc.Describe()
	resp, err := structpb.NewStruct(map[string]any{
		"descriptor_size":    d.DescriptorSize,
		"feature_space_size": d.FeatureSpaceSize,
		"run_counter":        d.RunCounter,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

func genomeFromStruct(req *structpb.Struct) (models.Genome, error) {
	if req == nil {
		return nil, errors.New("genome is required")
	}
	field, ok := req.GetFields()["genome"]
	if !ok {
		return nil, errors.New("genome is required")
	}
	list := field.GetListValue()
	if list == nil {
		return nil, errors.New("genome must be a list of numbers")
	}
	genome := make(models.Genome, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, errors.New("genome must be a list of numbers")
		}
		genome = append(genome, n.NumberValue)
	}
	return genome, nil
}

func floatsToAny(xs []float64) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// errorCode maps evaluation failures onto gRPC status codes.
func errorCode(err error) codes.Code {
	var (
		shapeErr     *materials.ShapeError
		countErr     *materials.CountMismatchError
		exhaustedErr *simulator.RetriesExhaustedError
		cfgErr       *config.ConfigurationError
	)
	switch {
	case errors.As(err, &shapeErr), errors.As(err, &countErr):
		return codes.InvalidArgument
	case errors.As(err, &exhaustedErr):
		return codes.Unavailable
	case errors.As(err, &cfgErr):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
