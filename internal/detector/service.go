package detector

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// PoseServiceName is the fully qualified gRPC service exposed by the sidecar.
// See proto/pose/v1/pose.proto.
const PoseServiceName = "physio.pose.v1.PoseService"

const detectMethod = "/" + PoseServiceName + "/Detect"

// poseServiceClient is the client half of PoseService. The request and reply
// are well-known types, so no generated package is needed.
type poseServiceClient interface {
	Detect(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type poseClient struct {
	cc grpc.ClientConnInterface
}

func newPoseServiceClient(cc grpc.ClientConnInterface) poseServiceClient {
	return &poseClient{cc: cc}
}

func (c *poseClient) Detect(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, detectMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
