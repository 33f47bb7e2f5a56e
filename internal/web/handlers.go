package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"coursefinder/internal/finder"
	"coursefinder/internal/umdio"
)

const sessionName = "coursefinder"

type indexPage struct {
	Criteria        finder.Criteria
	Semesters       []finder.Semester
	Departments     []umdio.Department
	SemesterWarning string
	Searched        bool
	Description     string
	Result          *finder.Result
	Error           string
}

type searchResponse struct {
	Rows        []finder.Row                    `json:"rows"`
	Count       int                             `json:"count"`
	Endpoint    string                          `json:"endpoint"`
	Description string                          `json:"description"`
	Semester    string                          `json:"semester"`
	Warnings    []finder.InvalidCriteriaWarning `json:"warnings"`
	Raw         []finder.RawResponse            `json:"raw,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Query string `json:"query,omitempty"`
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := s.session(r)

	query := r.URL.Query()
	page := indexPage{Searched: query.Get("search") != ""}
	if page.Searched {
		page.Criteria = criteriaFromQuery(query)
	} else {
		page.Criteria = loadCriteria(session)
	}

	semesters, err := s.finder.Semesters(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list semesters")
		page.SemesterWarning = "The semester list could not be loaded. Enter a term code like 202508."
	}
	page.Semesters = semesters
	if page.Criteria.Semester == "" && len(semesters) > 0 {
		page.Criteria.Semester = semesters[0].Code
	}

	departments, err := s.finder.Departments(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to list departments")
	}
	page.Departments = departments

	status := http.StatusOK
	if page.Searched {
		result, err := s.finder.Resolve(ctx, page.Criteria)
		if err != nil {
			status = errorStatus(err)
			page.Error = errorMessage(err)
		} else {
			page.Result = result
			page.Description = result.Plan.Describe()
		}

		saveCriteria(session, page.Criteria)
		if err := session.Save(r, w); err != nil {
			log.Warn().Err(err).Msg("Failed to save session")
		}
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", page); err != nil {
		log.Error().Err(err).Msg("Failed to render index")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	criteria := criteriaFromQuery(r.URL.Query())

	if criteria.Semester == "" {
		semester, err := s.newestSemester(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		criteria.Semester = semester
	}

	result, err := s.finder.Resolve(ctx, criteria)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Rows:        result.Rows,
		Count:       len(result.Rows),
		Endpoint:    result.Plan.Endpoint.String(),
		Description: result.Plan.Describe(),
		Semester:    result.Plan.Semester,
		Warnings:    result.Warnings,
		Raw:         result.Raw,
	})
}

func (s *Server) semestersHandler(w http.ResponseWriter, r *http.Request) {
	semesters, err := s.finder.Semesters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, semesters)
}

func (s *Server) departmentsHandler(w http.ResponseWriter, r *http.Request) {
	departments, err := s.finder.Departments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, departments)
}

func (s *Server) newestSemester(ctx context.Context) (string, error) {
	semesters, err := s.finder.Semesters(ctx)
	if err != nil {
		return "", err
	}
	if len(semesters) == 0 {
		return "", finder.ErrInvalidSemester
	}
	return semesters[0].Code, nil
}

// session never fails: a cookie that does not decode yields a fresh session.
func (s *Server) session(r *http.Request) *sessions.Session {
	session, err := s.sessions.Get(r, sessionName)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding unreadable session")
	}
	return session
}

func criteriaFromQuery(query url.Values) finder.Criteria {
	page, _ := strconv.Atoi(query.Get("page"))
	return finder.Criteria{
		Department:    query.Get("dept"),
		CourseID:      query.Get("course"),
		Professor:     query.Get("professor"),
		GenEd:         query.Get("gened"),
		Semester:      query.Get("semester"),
		OpenSeatsOnly: isChecked(query.Get("open")),
		Debug:         isChecked(query.Get("debug")),
		Page:          page,
	}.Normalize()
}

func isChecked(value string) bool {
	if strings.EqualFold(value, "on") {
		return true
	}
	checked, _ := strconv.ParseBool(value)
	return checked
}

func saveCriteria(session *sessions.Session, criteria finder.Criteria) {
	session.Values["dept"] = criteria.Department
	session.Values["course"] = criteria.CourseID
	session.Values["professor"] = criteria.Professor
	session.Values["gened"] = criteria.GenEd
	session.Values["semester"] = criteria.Semester
	session.Values["open"] = criteria.OpenSeatsOnly
	session.Values["debug"] = criteria.Debug
}

func loadCriteria(session *sessions.Session) finder.Criteria {
	str := func(key string) string {
		value, _ := session.Values[key].(string)
		return value
	}
	flag := func(key string) bool {
		value, _ := session.Values[key].(bool)
		return value
	}

	return finder.Criteria{
		Department:    str("dept"),
		CourseID:      str("course"),
		Professor:     str("professor"),
		GenEd:         str("gened"),
		Semester:      str("semester"),
		OpenSeatsOnly: flag("open"),
		Debug:         flag("debug"),
	}
}

func errorStatus(err error) int {
	var fetchErr *umdio.FetchError
	switch {
	case errors.Is(err, finder.ErrInvalidSemester):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func errorMessage(err error) string {
	var fetchErr *umdio.FetchError
	if errors.As(err, &fetchErr) {
		return "The course catalog could not be reached: " + fetchErr.Error()
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, err error) {
	response := errorResponse{Error: err.Error()}
	var fetchErr *umdio.FetchError
	if errors.As(err, &fetchErr) {
		response.Query = fetchErr.Query
	}
	writeJSON(w, errorStatus(err), response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
