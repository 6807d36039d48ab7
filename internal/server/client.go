package server

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// Client calls insights.v1.ShareService over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := encode(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	return decode(out, resp)
}

// CreateShare publishes cfg as a share under session.
func (c *Client) CreateShare(ctx context.Context, session string, cfg entity.ShareConfig, opts ...grpc.CallOption) (CreateShareResponse, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return CreateShareResponse{}, err
	}
	var resp CreateShareResponse
	err = c.invoke(ctx, MethodCreateShare, CreateShareRequest{SessionID: session, Config: raw}, &resp, opts...)
	return resp, err
}

func (c *Client) GetShare(ctx context.Context, id string, opts ...grpc.CallOption) (entity.Snapshot, error) {
	var resp GetShareResponse
	err := c.invoke(ctx, MethodGetShare, ShareRequest{ShareID: id}, &resp, opts...)
	return resp.Snapshot, err
}

func (c *Client) ListShares(ctx context.Context, opts ...grpc.CallOption) ([]entity.SnapshotMetadata, error) {
	var resp ListSharesResponse
	err := c.invoke(ctx, MethodListShares, struct{}{}, &resp, opts...)
	return resp.Shares, err
}

func (c *Client) DeleteShare(ctx context.Context, id string, opts ...grpc.CallOption) error {
	var resp DeleteShareResponse
	return c.invoke(ctx, MethodDeleteShare, ShareRequest{ShareID: id}, &resp, opts...)
}

func (c *Client) ExportShare(ctx context.Context, id string, async bool, opts ...grpc.CallOption) (ExportShareResponse, error) {
	var resp ExportShareResponse
	err := c.invoke(ctx, MethodExportShare, ExportShareRequest{ShareID: id, Async: async}, &resp, opts...)
	return resp, err
}

func (c *Client) LoadDataset(ctx context.Context, path string, opts ...grpc.CallOption) (LoadDatasetResponse, error) {
	var resp LoadDatasetResponse
	err := c.invoke(ctx, MethodLoadDataset, LoadDatasetRequest{Path: path}, &resp, opts...)
	return resp, err
}
