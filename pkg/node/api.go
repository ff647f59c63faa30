package node

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lioia/personalized-pagerank/pkg/utils"
)

type ApiServerImpl struct {
	Service *Service
}

var _ APIServer = (*ApiServerImpl)(nil)

// From client to node
func (s *ApiServerImpl) Solve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SolveRequest
	if err := FromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "could not decode request: %v", err)
	}
	utils.ServerLog("Received gRPC solve request")
	resp, err := s.Service.Solve(ctx, &req)
	if err != nil {
		if IsInvalid(err) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := ToStruct(resp)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "could not encode response: %v", err)
	}
	return out, nil
}

func (s *ApiServerImpl) HealthCheck(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

// Convert any JSON-serializable value into a protobuf Struct
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode a protobuf Struct into v (a pointer to a JSON-serializable value)
func FromStruct(in *structpb.Struct, v any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

type Client struct {
	Client APIClient
	Ctx    context.Context
	conn   *grpc.ClientConn
	cancel context.CancelFunc
}

// Create a gRPC client to `url` with the given call timeout
// Has to be closed (`c.Close()`)
func ApiCall(url string, timeout time.Duration) (Client, error) {
	conn, err := grpc.Dial(
		url,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return Client{}, fmt.Errorf("dial %s: %w", url, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return Client{
		Client: NewAPIClient(conn),
		Ctx:    ctx,
		conn:   conn,
		cancel: cancel,
	}, nil
}

func (c Client) Close() {
	c.cancel()
	c.conn.Close()
}

// Send req to the node and decode its response
func (c Client) Solve(req *SolveRequest) (*SolveResponse, error) {
	in, err := ToStruct(req)
	if err != nil {
		return nil, err
	}
	out, err := c.Client.Solve(c.Ctx, in)
	if err != nil {
		return nil, err
	}
	var resp SolveResponse
	if err := FromStruct(out, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
