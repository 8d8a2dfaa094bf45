package detector

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/pose"
)

// ErrBadReply is returned when the sidecar's reply does not have the
// {detected, landmarks[]} shape.
var ErrBadReply = errors.New("malformed pose reply")

// #region client-struct
// GRPCDetector wraps the gRPC connection to the Python pose sidecar.
type GRPCDetector struct {
	conn   *grpc.ClientConn
	client poseServiceClient
	health healthpb.HealthClient
}

// #endregion client-struct

// #region constructor
// NewGRPCDetector connects to the pose sidecar. The connection is lazy; use
// Check to find out whether anything is listening.
func NewGRPCDetector(addr string) (*GRPCDetector, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCDetector{
		conn:   conn,
		client: newPoseServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
	}, nil
}

// newGRPCDetectorWithService injects the service halves. Used for testing
// without a real connection.
func newGRPCDetectorWithService(svc poseServiceClient, health healthpb.HealthClient) *GRPCDetector {
	return &GRPCDetector{client: svc, health: health}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (d *GRPCDetector) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// #endregion close

// #region detect
// Detect sends one encoded image to the sidecar.
func (d *GRPCDetector) Detect(ctx context.Context, frame []byte) (pose.Skeleton, error) {
	resp, err := d.client.Detect(ctx, wrapperspb.Bytes(frame))
	if err != nil {
		return nil, fmt.Errorf("detect rpc: %w", err)
	}
	r, err := decodeStruct(resp)
	if err != nil {
		return nil, fmt.Errorf("detect rpc: %w", err)
	}
	return r.skeleton(), nil
}

func decodeStruct(s *structpb.Struct) (response, error) {
	var r response
	if s == nil {
		return r, ErrBadReply
	}
	fields := s.GetFields()
	r.Detected = fields["detected"].GetBoolValue()
	if !r.Detected {
		return r, nil
	}

	list := fields["landmarks"].GetListValue()
	if list == nil {
		return r, fmt.Errorf("%w: landmarks missing", ErrBadReply)
	}
	r.Landmarks = make([]pose.Point, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		lm := v.GetStructValue()
		if lm == nil {
			return r, fmt.Errorf("%w: landmark %d is not an object", ErrBadReply, i)
		}
		f := lm.GetFields()
		r.Landmarks = append(r.Landmarks, pose.Point{
			X:          f["x"].GetNumberValue(),
			Y:          f["y"].GetNumberValue(),
			Z:          f["z"].GetNumberValue(),
			Visibility: f["visibility"].GetNumberValue(),
		})
	}
	return r, nil
}

// #endregion detect

// #region check
// Check asks the sidecar's standard health service about PoseService.
func (d *GRPCDetector) Check(ctx context.Context) error {
	resp, err := d.health.Check(ctx, &healthpb.HealthCheckRequest{Service: PoseServiceName})
	if err != nil {
		return fmt.Errorf("health rpc: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: %s", ErrNotServing, resp.GetStatus())
	}
	return nil
}

// #endregion check
