package evald

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Result is the reply to a remote Evaluate call.
type Result struct {
	ID         string
	RunIndex   int
	Fitness    float64
	Descriptor []float64
}

// Client calls voxcraft.v1.Evaluator.
type Client struct {
	conn *grpc.ClientConn
	own  bool
}

// Dial connects to target without transport security.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	return &Client{conn: conn, own: true}, nil
}

// NewClient uses an existing connection. Close does not close it.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) Close() error {
	if !c.own {
		return nil
	}
	return c.conn.Close()
}

// Evaluate sends genome for evaluation.
func (c *Client) Evaluate(ctx context.Context, genome models.Genome) (Result, error) {
	req, err := structpb.NewStruct(map[string]any{"genome": floatsToAny(genome)})
	if err != nil {
		return Result{}, err
	}
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, evaluateMethod, req, resp); err != nil {
		return Result{}, err
	}

	f := resp.GetFields()
	res := Result{
		ID:       f["id"].GetStringValue(),
		RunIndex: int(f["run_index"].GetNumberValue()),
		Fitness:  f["fitness"].GetNumberValue(),
	}
	for _, v := range f["descriptor"].GetListValue().GetValues() {
		res.Descriptor = append(res.Descriptor, v.GetNumberValue())
	}
	return res, nil
}

// Describe fetches the descriptor and feature space sizes and the run counter.
func (c *Client) Describe(ctx context.Context) (Description, error) {
	resp := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, describeMethod, &structpb.Struct{}, resp); err != nil {
		return Description{}, err
	}
	f := resp.GetFields()
	return Description{
		DescriptorSize:   int(f["descriptor_size"].GetNumberValue()),
		FeatureSpaceSize: int(f["feature_space_size"].GetNumberValue()),
		RunCounter:       int(f["run_counter"].GetNumberValue()),
	}, nil
}
