package camera

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Frame is a single still captured from the camera, held as encoded JPEG
// bytes at the sensor's native resolution.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// DataURI renders the frame as a base64 JPEG data URI, the transport format
// the analysis backend and the local image store both accept.
func (f *Frame) DataURI() string {
	if f == nil || len(f.Data) == 0 {
		return ""
	}
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(f.Data))
}

// Size returns the encoded frame size in bytes.
func (f *Frame) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}
