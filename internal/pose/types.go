package pose

import (
	"errors"
	"fmt"
)

// #region landmark
// Landmark identifies an anatomical point in the 33-point BlazePose topology
// returned by the pose sidecar. Values match the sidecar's landmark indices.
type Landmark int

const (
	Nose Landmark = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
)

// LandmarkCount is the number of landmarks in a complete skeleton.
const LandmarkCount = 33

var landmarkNames = [LandmarkCount]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

// String returns the snake_case landmark name.
func (l Landmark) String() string {
	if l < 0 || int(l) >= LandmarkCount {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// Mirror returns the same anatomical point on the opposite body side.
// Midline landmarks (the nose) mirror to themselves.
func (l Landmark) Mirror() Landmark {
	if l <= Nose || int(l) >= LandmarkCount {
		return l
	}
	// Landmarks 1..10 come in (inner, mid, outer) eye triples and ear/mouth
	// pairs; from 11 on every left landmark is immediately followed by its right.
	switch {
	case l >= LeftEyeInner && l <= LeftEyeOuter:
		return l + 3
	case l >= RightEyeInner && l <= RightEyeOuter:
		return l - 3
	case (l-LeftEar)%2 == 0:
		return l + 1
	default:
		return l - 1
	}
}

// #endregion landmark

// #region point
// Point is one landmark position in the detector's world coordinate frame
// (metres, hip-centred). Visibility is the detector's confidence in [0,1].
type Point struct {
	X          float64 `json:"x" msgpack:"x"`
	Y          float64 `json:"y" msgpack:"y"`
	Z          float64 `json:"z" msgpack:"z"`
	Visibility float64 `json:"visibility,omitempty" msgpack:"visibility"`
}

// #endregion point

// #region skeleton
// ErrMissingLandmark is returned when a skeleton does not carry a landmark
// that an exercise rule needs.
var ErrMissingLandmark = errors.New("missing landmark")

// Skeleton is a full-body pose indexed by Landmark. A nil Skeleton means the
// detector found no person in the frame.
type Skeleton []Point

// At returns the position of a landmark.
func (s Skeleton) At(l Landmark) (Point, error) {
	if l < 0 || int(l) >= len(s) {
		return Point{}, fmt.Errorf("%w: %s (skeleton has %d points)", ErrMissingLandmark, l, len(s))
	}
	return s[l], nil
}

// Triple fetches three landmarks in order, failing on the first missing one.
func (s Skeleton) Triple(a, b, c Landmark) ([3]Point, error) {
	var out [3]Point
	for i, l := range [3]Landmark{a, b, c} {
		p, err := s.At(l)
		if err != nil {
			return out, err
		}
		out[i] = p
	}
	return out, nil
}

// #endregion skeleton
