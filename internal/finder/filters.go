package finder

import (
	"strings"

	"github.com/samber/lo"
)

// Filters are the criteria applied locally after the upstream request.
type Filters struct {
	Semester      string
	Department    string
	CourseIDs     []string
	CoursePrefix  string
	Professor     string
	GenEd         string
	OpenSeatsOnly bool
}

// Apply keeps the rows matching every set filter, in order. Duplicate
// course-section pairs collapse to the first occurrence; the open seats filter
// runs last. The result is never nil.
func (f Filters) Apply(rows []Row) []Row {
	rows = lo.Filter(rows, func(row Row, _ int) bool {
		return f.Semester == "" || row.Semester == f.Semester
	})

	if f.Department != "" {
		rows = lo.Filter(rows, func(row Row, _ int) bool {
			return row.Department == f.Department || strings.HasPrefix(row.CourseID, f.Department)
		})
	}

	if len(f.CourseIDs) > 0 {
		rows = lo.Filter(rows, func(row Row, _ int) bool {
			return lo.Contains(f.CourseIDs, row.CourseID)
		})
	}

	if f.CoursePrefix != "" {
		rows = lo.Filter(rows, func(row Row, _ int) bool {
			return strings.HasPrefix(row.CourseID, f.CoursePrefix)
		})
	}

	if f.Professor != "" {
		needle := strings.ToLower(f.Professor)
		rows = lo.Filter(rows, func(row Row, _ int) bool {
			return lo.SomeBy(row.Instructors, func(name string) bool {
				return strings.Contains(strings.ToLower(name), needle)
			})
		})
	}

	if f.GenEd != "" {
		rows = lo.Filter(rows, func(row Row, _ int) bool {
			return lo.Contains(row.GenEds, f.GenEd)
		})
	}

	rows = lo.UniqBy(rows, func(row Row) string {
		return row.CourseID + "/" + row.SectionID
	})

	if f.OpenSeatsOnly {
		rows = lo.Filter(rows, func(row Row, _ int) bool {
			return row.OpenSeats >= 1
		})
	}

	if rows == nil {
		rows = []Row{}
	}
	return rows
}
