package finder

import (
	"regexp"
	"strings"
)

var semesterPattern = regexp.MustCompile(`^[0-9]{4}(01|05|08|12)$`)

// Criteria is one search as entered in the form. Empty strings are unset filters.
type Criteria struct {
	Department    string `json:"department,omitempty"`
	CourseID      string `json:"course_id,omitempty"`
	Professor     string `json:"professor,omitempty"`
	GenEd         string `json:"gen_ed,omitempty"`
	Semester      string `json:"semester"`
	OpenSeatsOnly bool   `json:"open_seats_only,omitempty"`
	// Debug attaches the raw upstream bodies to the result.
	Debug bool `json:"debug,omitempty"`
	// Page is the upstream listing page, 1-based. Zero means the first page.
	Page int `json:"page,omitempty"`
}

// Normalize trims every field and upper-cases the code fields.
func (c Criteria) Normalize() Criteria {
	c.Department = strings.ToUpper(strings.TrimSpace(c.Department))
	c.CourseID = strings.ToUpper(strings.TrimSpace(c.CourseID))
	c.Professor = strings.Join(strings.Fields(c.Professor), " ")
	c.GenEd = strings.ToUpper(strings.TrimSpace(c.GenEd))
	c.Semester = strings.TrimSpace(c.Semester)
	if c.Page < 0 {
		c.Page = 0
	}
	return c
}

// IsBrowse reports whether no filter other than the semester is set.
func (c Criteria) IsBrowse() bool {
	return c.Department == "" && c.CourseID == "" && c.Professor == "" && c.GenEd == ""
}

func validSemester(code string) bool {
	return semesterPattern.MatchString(code)
}
