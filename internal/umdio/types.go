package umdio

// Course is a course record from the /courses endpoints.
type Course struct {
	CourseID    string   `json:"course_id"`
	Semester    Text     `json:"semester"`
	Name        string   `json:"name"`
	DeptID      string   `json:"dept_id"`
	Department  string   `json:"department"`
	Credits     Text     `json:"credits"`
	Description string   `json:"description"`
	GenEd       GenEds   `json:"gen_ed"`
	Sections    Sections `json:"sections"`
}

// Section is one scheduled offering of a course.
// Expanded is false when the upstream only returned the section id.
type Section struct {
	ID          string
	Course      string
	Semester    Text
	Instructors []string
	Seats       Count
	OpenSeats   Count
	Waitlist    Count
	Meetings    []Meeting
	Expanded    bool
}

type Meeting struct {
	Days      Text `json:"days"`
	Room      Text `json:"room"`
	Building  Text `json:"building"`
	ClassType Text `json:"classtype"`
	StartTime Text `json:"start_time"`
	EndTime   Text `json:"end_time"`
}

type Professor struct {
	Name        string   `json:"name"`
	Departments []Text   `json:"departments"`
	Taught      []Taught `json:"taught"`
}

// Taught is a course a professor taught. Semester is empty when the upstream
// listed the bare course id.
type Taught struct {
	CourseID string
	Semester string
}

type Department struct {
	DeptID     string `json:"dept_id"`
	Department string `json:"department"`
}

// ErrorResponse is the JSON body UMD.io sends along with error statuses.
type ErrorResponse struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
}

// CourseQuery holds the listing parameters for GET /courses.
type CourseQuery struct {
	DeptID   string
	GenEd    string
	Semester string
	Page     int
}
