package backend

import (
	"errors"
	"fmt"
)

// ErrBarcodeNotFound indicates the service could not resolve a scanned
// barcode. Recoverable: the user should retry in still-capture mode.
var ErrBarcodeNotFound = errors.New("barcode not found")

// ServerError carries a non-200 response from the analysis service.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analysis service returned %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis service returned %d: %s", e.StatusCode, e.Body)
}

// IsServerError reports whether err wraps a ServerError.
func IsServerError(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
