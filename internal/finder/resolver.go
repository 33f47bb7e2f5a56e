// Package finder turns search criteria into an upstream request and the
// upstream answer into table rows.
package finder

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"coursefinder/internal/umdio"
)

// Catalog is the upstream course catalog.
type Catalog interface {
	Courses(ctx context.Context, query umdio.CourseQuery) ([]umdio.Course, []byte, error)
	CoursesByID(ctx context.Context, ids []string, semester string) ([]umdio.Course, []byte, error)
	Professors(ctx context.Context, name string) ([]umdio.Professor, []byte, error)
	Semesters(ctx context.Context) ([]string, []byte, error)
	Departments(ctx context.Context) ([]umdio.Department, []byte, error)
}

// RawResponse is an unfiltered upstream body kept for debugging.
type RawResponse struct {
	Request string          `json:"request"`
	Body    json.RawMessage `json:"body"`
}

type Result struct {
	Rows     []Row                    `json:"rows"`
	Plan     Plan                     `json:"-"`
	Warnings []InvalidCriteriaWarning `json:"warnings"`
	Raw      []RawResponse            `json:"raw,omitempty"`
}

type Resolver struct {
	catalog Catalog
}

func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve runs one search. Upstream failures come back as *umdio.FetchError and
// are never retried; a search that matches nothing returns an empty result.
func (r *Resolver) Resolve(ctx context.Context, criteria Criteria) (*Result, error) {
	criteria = criteria.Normalize()
	if !validSemester(criteria.Semester) {
		return nil, ErrInvalidSemester
	}

	plan := BuildPlan(criteria)
	result := &Result{
		Plan:     plan,
		Warnings: plan.Warnings,
	}
	if result.Warnings == nil {
		result.Warnings = []InvalidCriteriaWarning{}
	}

	log.Debug().Str("endpoint", plan.Endpoint.String()).Str("semester", plan.Semester).
		Int("warnings", len(plan.Warnings)).Msg("Resolving Search")

	courses, err := r.fetch(ctx, plan, result, criteria.Debug)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", plan.Endpoint.String()).Msg("Search Failed")
		return nil, err
	}

	rows := Flatten(courses, plan.Semester)
	result.Rows = plan.Filters.Apply(rows)

	log.Debug().Int("courses", len(courses)).Int("rows", len(rows)).Int("kept", len(result.Rows)).
		Msg("Search Resolved")
	return result, nil
}

func (r *Resolver) fetch(ctx context.Context, plan Plan, result *Result, debug bool) ([]umdio.Course, error) {
	record := func(request string, body []byte) {
		if debug && len(body) > 0 {
			result.Raw = append(result.Raw, RawResponse{Request: request, Body: json.RawMessage(body)})
		}
	}

	switch plan.Endpoint {
	case EndpointCourse:
		return r.lookup(ctx, plan.CourseIDs, plan.Semester, record)

	case EndpointProfessor:
		professors, body, err := r.catalog.Professors(ctx, plan.Professor)
		if umdio.IsNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		record("professors", body)

		ids := taughtCourseIDs(professors, plan.Semester)
		if len(ids) == 0 {
			return nil, nil
		}
		return r.lookup(ctx, ids, plan.Semester, record)

	default:
		query := umdio.CourseQuery{Semester: plan.Semester, Page: plan.Page}
		switch plan.Endpoint {
		case EndpointDepartment:
			query.DeptID = plan.Department
		case EndpointGenEd:
			query.GenEd = plan.GenEd
		}

		courses, body, err := r.catalog.Courses(ctx, query)
		if err != nil {
			return nil, err
		}
		record("courses", body)
		return courses, nil
	}
}

// lookup fetches courses by exact code. An unknown code is an empty answer, not a failure.
func (r *Resolver) lookup(ctx context.Context, ids []string, semester string, record func(string, []byte)) ([]umdio.Course, error) {
	courses, body, err := r.catalog.CoursesByID(ctx, ids, semester)
	if umdio.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	record("courses/"+lo.Ternary(len(ids) == 1, ids[0], "..."), body)
	return courses, nil
}

// taughtCourseIDs collects the distinct courses the professors taught, keeping
// entries without a semester and those in the requested one.
func taughtCourseIDs(professors []umdio.Professor, semester string) []string {
	taught := lo.FlatMap(professors, func(professor umdio.Professor, _ int) []umdio.Taught {
		return professor.Taught
	})

	ids := lo.FilterMap(taught, func(course umdio.Taught, _ int) (string, bool) {
		keep := course.CourseID != "" && (course.Semester == "" || course.Semester == semester)
		return course.CourseID, keep
	})
	return lo.Uniq(ids)
}
