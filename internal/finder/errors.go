package finder

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrInvalidSemester = errors.New("finder: semester must be a term code like 202508")

// InvalidCriteriaWarning records input that could not be used as typed and what
// the search did with it instead. It never fails a search.
type InvalidCriteriaWarning struct {
	Field    string `json:"field"`
	Input    string `json:"input"`
	Fallback string `json:"fallback"`
}

func (w InvalidCriteriaWarning) Error() string {
	return fmt.Sprintf("%s %q: %s", w.Field, w.Input, w.Fallback)
}
