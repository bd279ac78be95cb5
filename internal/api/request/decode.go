package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcoot/drawit/internal/model"
)

// MaxBodyBytes caps every request body
const MaxBodyBytes = 1 << 20

// Decode reads a JSON body into v. Oversized and malformed bodies are
// reported as ErrInvalidPayload.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", model.ErrInvalidPayload, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	return nil
}
