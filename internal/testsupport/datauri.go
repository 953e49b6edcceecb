package testsupport

import (
	"encoding/base64"
	"fmt"
	"testing"
)

// DataURI builds a JPEG data URI carrying the requested number of payload
// bytes. A size <= 0 produces a single byte.
func DataURI(t testing.TB, size int) string {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(buf))
}
