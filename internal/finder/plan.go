package finder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var (
	courseCodePattern  = regexp.MustCompile(`^[A-Z]{4}[0-9]{3}[A-Z]?$`)
	departmentPattern  = regexp.MustCompile(`^[A-Z]{4}$`)
	partialCodePattern = regexp.MustCompile(`^([A-Z]{4})[0-9]`)
	namePattern        = regexp.MustCompile(`^[A-Z][A-Z .'-]*$`)
)

// Endpoint is the upstream listing a plan reads from.
type Endpoint int

const (
	EndpointCourse Endpoint = iota
	EndpointDepartment
	EndpointProfessor
	EndpointGenEd
	EndpointBrowse
)

func (e Endpoint) String() string {
	switch e {
	case EndpointCourse:
		return "course"
	case EndpointDepartment:
		return "department"
	case EndpointProfessor:
		return "professor"
	case EndpointGenEd:
		return "gened"
	case EndpointBrowse:
		return "browse"
	}
	return fmt.Sprintf("Endpoint(%d)", int(e))
}

// Plan is the upstream request a search issues plus the filters applied locally to
// what comes back.
type Plan struct {
	Endpoint   Endpoint
	CourseIDs  []string
	Department string
	Professor  string
	GenEd      string
	Semester   string
	Page       int
	Filters    Filters
	Warnings   []InvalidCriteriaWarning
}

// Describe is a one-line summary of the upstream request for display.
func (p Plan) Describe() string {
	var description string
	switch p.Endpoint {
	case EndpointCourse:
		description = fmt.Sprintf("course lookup %s", strings.Join(p.CourseIDs, ","))
	case EndpointDepartment:
		description = fmt.Sprintf("department listing %s", p.Department)
	case EndpointProfessor:
		description = fmt.Sprintf("professor lookup %q", p.Professor)
	case EndpointGenEd:
		description = fmt.Sprintf("GenEd listing %s", p.GenEd)
	default:
		description = "browse all courses"
	}
	return fmt.Sprintf("%s in %s", description, SemesterLabel(p.Semester))
}

// BuildPlan picks the most specific upstream request for the criteria and turns
// every criterion that request cannot express into a local filter. Order of
// preference: exact course codes, department, professor, GenEd, browse.
func BuildPlan(criteria Criteria) Plan {
	criteria = criteria.Normalize()
	input := parseCourseInput(criteria.CourseID)

	plan := Plan{
		Semester: criteria.Semester,
		Page:     criteria.Page,
		Warnings: input.warnings,
		Filters: Filters{
			Semester:      criteria.Semester,
			OpenSeatsOnly: criteria.OpenSeatsOnly,
		},
	}

	professor := criteria.Professor
	if input.professor != "" {
		if professor == "" {
			professor = input.professor
		} else {
			// the name fallback is always the last warning parseCourseInput adds
			plan.Warnings[len(plan.Warnings)-1].Fallback = "ignored, a professor is already set"
		}
	}

	switch {
	case len(input.codes) > 0:
		plan.Endpoint = EndpointCourse
		plan.CourseIDs = input.codes
		plan.Filters.CourseIDs = input.codes
		plan.Filters.Department = criteria.Department
		plan.Filters.Professor = professor
		plan.Filters.GenEd = criteria.GenEd

	case criteria.Department != "" || input.department != "":
		plan.Endpoint = EndpointDepartment
		plan.Department = criteria.Department
		if plan.Department == "" {
			plan.Department = input.department
		} else if input.department != "" && input.department != plan.Department {
			plan.Filters.CoursePrefix = input.department
		}
		if input.prefix != "" {
			plan.Filters.CoursePrefix = input.prefix
		}
		plan.Filters.Professor = professor
		plan.Filters.GenEd = criteria.GenEd

	case professor != "":
		plan.Endpoint = EndpointProfessor
		plan.Professor = professor
		// hydrated courses carry every section, not just the professor's
		plan.Filters.Professor = professor
		plan.Filters.GenEd = criteria.GenEd

	case criteria.GenEd != "":
		plan.Endpoint = EndpointGenEd
		plan.GenEd = criteria.GenEd

	default:
		plan.Endpoint = EndpointBrowse
	}

	return plan
}

type courseInput struct {
	codes      []string
	department string
	prefix     string
	professor  string
	warnings   []InvalidCriteriaWarning
}

// parseCourseInput classifies the course field: a list of exact codes, a
// department, a partial code, or as a last resort a name.
func parseCourseInput(raw string) courseInput {
	var input courseInput

	tokens := lo.FilterMap(strings.Split(raw, ","), func(token string, _ int) (string, bool) {
		token = strings.TrimSpace(token)
		return token, token != ""
	})
	if len(tokens) == 0 {
		return input
	}

	compact := func(token string) string {
		return strings.Join(strings.Fields(token), "")
	}
	isCode := func(token string, _ int) bool {
		return courseCodePattern.MatchString(compact(token))
	}

	codes := lo.Filter(tokens, isCode)
	if len(codes) > 0 {
		input.codes = lo.Uniq(lo.Map(codes, func(token string, _ int) string {
			return compact(token)
		}))
		for _, token := range lo.Filter(tokens, func(token string, i int) bool { return !isCode(token, i) }) {
			input.warnings = append(input.warnings, InvalidCriteriaWarning{
				Field: "course", Input: token, Fallback: "ignored, not a course code",
			})
		}
		return input
	}

	for _, token := range tokens[1:] {
		input.warnings = append(input.warnings, InvalidCriteriaWarning{
			Field: "course", Input: token, Fallback: "ignored, only the first entry is used",
		})
	}

	token := tokens[0]
	code := compact(token)
	switch {
	case departmentPattern.MatchString(code):
		input.department = code

	case partialCodePattern.MatchString(code):
		input.department = partialCodePattern.FindStringSubmatch(code)[1]
		input.prefix = code
		input.warnings = append(input.warnings, InvalidCriteriaWarning{
			Field:    "course",
			Input:    token,
			Fallback: fmt.Sprintf("searched department %s for courses starting with %s", input.department, code),
		})

	case namePattern.MatchString(token):
		input.professor = titleCase(token)
		input.warnings = append(input.warnings, InvalidCriteriaWarning{
			Field:    "course",
			Input:    token,
			Fallback: fmt.Sprintf("searched as professor name %q", input.professor),
		})

	default:
		input.warnings = append(input.warnings, InvalidCriteriaWarning{
			Field: "course", Input: token, Fallback: "ignored, not a course code or department",
		})
	}

	return input
}

func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
