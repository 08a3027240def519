package shared

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/taskdesk/taskdesk-api/internal/domain"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// ReadBody reads the request body up to MaxBodyBytes. An oversized body is
// reported as a validation error on the body field.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.NewValidationError("body",
				fmt.Sprintf("must be at most %d bytes", MaxBodyBytes), domain.ErrInvalidFormat)
		}
		return nil, domain.NewValidationError("body", "could not be read", domain.ErrInvalidFormat)
	}
	return body, nil
}
