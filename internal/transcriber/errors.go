package transcriber

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrRejected is matched by failures the service will repeat for every
// remaining unit of a run: bad credentials, a forbidden account or a format
// the backend cannot produce. The dispatcher stops starting units once it
// sees one.
var ErrRejected = errors.New("rejected by transcription backend")

func rejected(err error) error {
	return fmt.Errorf("%w: %w", ErrRejected, err)
}

// classify tags authentication and permission failures. Every other status,
// 404 included, is left to fail only the unit that caused it.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return rejected(err)
		}
	}
	return err
}
