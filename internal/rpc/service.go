package rpc

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"fincalc/internal/calculator"
	"fincalc/internal/interest"
	postfixnotation "fincalc/pkg/postfix_notation"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "fincalc.Calculator"

const (
	evaluateMethod          = "/" + ServiceName + "/Evaluate"
	calculateInterestMethod = "/" + ServiceName + "/CalculateInterest"
)

// CalculatorServer is the server side of fincalc.Calculator. Failures of
// the calculation itself are reported in the "error" field of the reply,
// not as RPC errors.
type CalculatorServer interface {
	Evaluate(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CalculateInterest(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "CalculateInterest", Handler: calculateInterestHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fincalc/calculator.proto",
}

func Register(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func calculateInterestHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).CalculateInterest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: calculateInterestMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).CalculateInterest(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service evaluates expressions with fixed options.
type Service struct {
	opts postfixnotation.Options
	log  *slog.Logger
}

func NewService(opts postfixnotation.Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{opts: opts, log: log}
}

func (s *Service) Evaluate(_ context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	v, err := calculator.Evaluate(in.GetValue(), s.opts)
	if err != nil {
		s.log.Debug("evaluate", "expression", in.GetValue(), "grammar", s.opts.Grammar.String(), "err", err)
		return structpb.NewStruct(map[string]any{"error": calculator.Message(err)})
	}
	return structpb.NewStruct(map[string]any{"result": v})
}

// CalculateInterest takes the interest form fields as struct fields.
// Numbers and strings are both accepted.
func (s *Service) CalculateInterest(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	form := url.Values{}
	for name, v := range in.GetFields() {
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			form.Set(name, k.StringValue)
		case *structpb.Value_NumberValue:
			form.Set(name, strconv.FormatFloat(k.NumberValue, 'f', -1, 64))
		}
	}
	res, err := interest.CalculateForm(form)
	if err != nil {
		return structpb.NewStruct(map[string]any{"error": err.Error()})
	}
	return structpb.NewStruct(map[string]any{"result": res.HTML()})
}

// LoggingInterceptor logs every unary call with its duration.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("rpc", "method", info.FullMethod, "duration", time.Since(start), "err", err)
		return resp, err
	}
}
