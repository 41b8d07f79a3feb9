package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrRemote wraps a calculation failure reported by the server.
var ErrRemote = errors.New("calculation failed")

// Serve runs the service on port until ctx is cancelled.
func Serve(ctx context.Context, port int, srv CalculatorServer, log *slog.Logger) error {
	lis, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	s := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(log)))
	Register(s, srv)
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()
	log.Info("grpc server started", "port", port)
	return s.Serve(lis)
}

type Client struct {
	conn *grpc.ClientConn
}

func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Evaluate(ctx context.Context, expression string) (float64, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, evaluateMethod, wrapperspb.String(expression), out); err != nil {
		return 0, err
	}
	if err := remoteError(out); err != nil {
		return 0, err
	}
	return out.GetFields()["result"].GetNumberValue(), nil
}

// CalculateInterest sends the interest form fields and returns the rendered
// result.
func (c *Client) CalculateInterest(ctx context.Context, fields map[string]any) (string, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return "", err
	}
	out := new(structpb.Struct)
	if err = c.conn.Invoke(ctx, calculateInterestMethod, in, out); err != nil {
		return "", err
	}
	if err = remoteError(out); err != nil {
		return "", err
	}
	return out.GetFields()["result"].GetStringValue(), nil
}

func remoteError(out *structpb.Struct) error {
	if v, ok := out.GetFields()["error"]; ok {
		return fmt.Errorf("%w: %s", ErrRemote, v.GetStringValue())
	}
	return nil
}
