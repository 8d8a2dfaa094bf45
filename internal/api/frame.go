package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrBadFrame is returned when the frame field cannot be decoded to bytes.
var ErrBadFrame = errors.New("invalid frame")

// DecodeDataURL returns the payload of a base64 data URL. A bare base64
// string without the "data:...," header is accepted too. Image decoding is
// left to the detector.
func DecodeDataURL(s string) ([]byte, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return nil, fmt.Errorf("%w: data URL has no payload", ErrBadFrame)
		}
		if !strings.HasSuffix(payload[:i], ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64 encoded", ErrBadFrame)
		}
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadFrame)
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some encoders drop the padding
		if b, err2 := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err2 == nil {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	return b, nil
}
