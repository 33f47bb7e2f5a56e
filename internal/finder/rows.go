package finder

import (
	"strings"

	"github.com/samber/lo"

	"coursefinder/internal/umdio"
)

// Row is one course-section line of the results table. A course without sections
// gets a single row with an empty SectionID.
type Row struct {
	CourseID    string   `json:"course_id"`
	Title       string   `json:"title"`
	Department  string   `json:"department"`
	Credits     string   `json:"credits"`
	GenEds      []string `json:"gen_eds"`
	SectionID   string   `json:"section_id,omitempty"`
	Instructors []string `json:"instructors"`
	OpenSeats   int      `json:"open_seats"`
	TotalSeats  int      `json:"total_seats"`
	Waitlist    int      `json:"waitlist"`
	Meetings    []string `json:"meetings"`
	Semester    string   `json:"semester"`
}

// Flatten turns courses into rows in upstream order. Records that omit their
// semester inherit the requested one.
func Flatten(courses []umdio.Course, semester string) []Row {
	rows := make([]Row, 0, len(courses))

	for _, course := range courses {
		courseSemester := lo.Ternary(course.Semester != "", course.Semester.String(), semester)
		base := Row{
			CourseID:    strings.ToUpper(strings.TrimSpace(course.CourseID)),
			Title:       strings.TrimSpace(course.Name),
			Department:  strings.ToUpper(course.DeptID),
			Credits:     course.Credits.String(),
			GenEds:      lo.Uniq(lo.Map(course.GenEd, func(code string, _ int) string { return strings.ToUpper(code) })),
			Instructors: []string{},
			Meetings:    []string{},
			Semester:    courseSemester,
		}
		if base.Department == "" && len(base.CourseID) >= 4 {
			base.Department = base.CourseID[:4]
		}

		if len(course.Sections) == 0 {
			rows = append(rows, base)
			continue
		}

		for _, section := range course.Sections {
			row := base
			row.SectionID = section.ID
			row.Semester = lo.Ternary(section.Semester != "", section.Semester.String(), courseSemester)
			row.Instructors = lo.FilterMap(section.Instructors, func(name string, _ int) (string, bool) {
				name = strings.TrimSpace(name)
				return name, name != ""
			})
			row.OpenSeats = int(section.OpenSeats)
			row.TotalSeats = int(section.Seats)
			row.Waitlist = int(section.Waitlist)
			row.Meetings = lo.FilterMap(section.Meetings, func(meeting umdio.Meeting, _ int) (string, bool) {
				summary := summarizeMeeting(meeting)
				return summary, summary != ""
			})
			rows = append(rows, row)
		}
	}

	return rows
}

// summarizeMeeting renders a meeting as "MWF 9:00am-9:50am CSI 0324".
func summarizeMeeting(meeting umdio.Meeting) string {
	times := meeting.StartTime.String()
	if meeting.EndTime != "" {
		times += "-" + meeting.EndTime.String()
	}

	parts := []string{meeting.Days.String(), times, meeting.Building.String(), meeting.Room.String()}
	return strings.Join(lo.Filter(parts, func(part string, _ int) bool { return part != "" }), " ")
}
