package umdio

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// FetchError is returned for every failed upstream call: transport failures,
// non-2xx statuses and bodies that are not the expected JSON.
type FetchError struct {
	Query      string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		message := e.Message
		if message == "" {
			message = http.StatusText(e.StatusCode)
		}
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Query, e.StatusCode, message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Query, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Query, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an upstream 404, which lookups by id use to
// say that nothing matched.
func IsNotFound(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound
}
