package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursefinder/internal/finder"
	"coursefinder/internal/umdio"
)

type stubFinder struct {
	rows         []finder.Row
	raw          []finder.RawResponse
	err          error
	semesterErr  error
	panicOnQuery bool
	criteria     []finder.Criteria
}

func (s *stubFinder) Resolve(_ context.Context, criteria finder.Criteria) (*finder.Result, error) {
	if s.panicOnQuery {
		panic("resolver blew up")
	}
	s.criteria = append(s.criteria, criteria)
	if s.err != nil {
		return nil, s.err
	}
	if !strings.HasPrefix(criteria.Semester, "20") {
		return nil, finder.ErrInvalidSemester
	}

	plan := finder.BuildPlan(criteria)
	result := &finder.Result{Rows: s.rows, Plan: plan, Warnings: plan.Warnings}
	if result.Warnings == nil {
		result.Warnings = []finder.InvalidCriteriaWarning{}
	}
	if criteria.Debug {
		result.Raw = s.raw
	}
	return result, nil
}

func (s *stubFinder) Semesters(context.Context) ([]finder.Semester, error) {
	if s.semesterErr != nil {
		return nil, s.semesterErr
	}
	return []finder.Semester{
		{Code: "202508", Label: "Fall 2025"},
		{Code: "202501", Label: "Spring 2025"},
	}, nil
}

func (s *stubFinder) Departments(context.Context) ([]umdio.Department, error) {
	return []umdio.Department{{DeptID: "CMSC", Department: "Computer Science"}}, nil
}

var sampleRows = []finder.Row{
	{CourseID: "CMSC131", Title: "Object-Oriented Programming I", SectionID: "0101", Instructors: []string{"Jane Doe"}, OpenSeats: 3, TotalSeats: 30, Semester: "202508", GenEds: []string{}, Meetings: []string{"MWF 9:00am-9:50am IRB 0324"}},
	{CourseID: "CMSC132", Title: "Object-Oriented Programming II", SectionID: "0101", Instructors: []string{"John Roe", "Ann Poe"}, OpenSeats: 0, TotalSeats: 30, Semester: "202508", GenEds: []string{}, Meetings: []string{}},
}

func newTestServer(f Finder) http.Handler {
	store := sessions.NewCookieStore(securecookie.GenerateRandomKey(32))
	return NewServer(f, store, []string{"https://courses.example.edu"}).Handler()
}

func get(t *testing.T, handler http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func parse(t *testing.T, recorder *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(recorder.Body)
	require.NoError(t, err)
	return doc
}

func TestIndexWithoutSearch(t *testing.T) {
	stub := &stubFinder{rows: sampleRows}
	recorder := get(t, newTestServer(stub), "/")
	require.Equal(t, http.StatusOK, recorder.Code)

	doc := parse(t, recorder)
	assert.Equal(t, 0, doc.Find("table#results").Length())
	assert.Equal(t, 2, doc.Find(`select[name="semester"] option`).Length())
	selected, _ := doc.Find(`select[name="semester"] option[selected]`).Attr("value")
	assert.Equal(t, "202508", selected)
	assert.Equal(t, "CMSC", doc.Find("datalist#departments option").AttrOr("value", ""))
	assert.Empty(t, stub.criteria)
}

func TestIndexSearchRendersRows(t *testing.T) {
	stub := &stubFinder{rows: sampleRows}
	recorder := get(t, newTestServer(stub), "/?search=1&dept=cmsc&semester=202501&open=on")
	require.Equal(t, http.StatusOK, recorder.Code)

	require.Len(t, stub.criteria, 1)
	assert.Equal(t, finder.Criteria{Department: "CMSC", Semester: "202501", OpenSeatsOnly: true}, stub.criteria[0])

	doc := parse(t, recorder)
	rows := doc.Find("table#results tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "CMSC131", rows.First().Find("td.course").Text())
	assert.Equal(t, "John Roe, Ann Poe", rows.Last().Find("td.instructors").Text())
	assert.True(t, rows.Last().Find("td.seats").HasClass("seats-full"))
	assert.Contains(t, doc.Find("#summary").Text(), "department listing CMSC in Spring 2025")

	selected, _ := doc.Find(`select[name="semester"] option[selected]`).Attr("value")
	assert.Equal(t, "202501", selected)
	_, checked := doc.Find(`input[name="open"]`).Attr("checked")
	assert.True(t, checked)
}

func TestIndexEmptyResults(t *testing.T) {
	recorder := get(t, newTestServer(&stubFinder{}), "/?search=1&course=ZZZZ999&semester=202508")
	require.Equal(t, http.StatusOK, recorder.Code)

	doc := parse(t, recorder)
	assert.Equal(t, "No courses found matching your filters.", doc.Find("#no-results").Text())
	assert.Equal(t, 0, doc.Find("#error").Length())
}

func TestIndexWarningsAndDebug(t *testing.T) {
	stub := &stubFinder{
		rows: sampleRows,
		raw:  []finder.RawResponse{{Request: "courses", Body: json.RawMessage(`{"course_id":"CMSC131"}`)}},
	}
	recorder := get(t, newTestServer(stub), "/?search=1&course=jane+doe&semester=202508&debug=on")
	require.Equal(t, http.StatusOK, recorder.Code)

	doc := parse(t, recorder)
	assert.Equal(t, 1, doc.Find("#warnings li").Length())
	assert.Contains(t, doc.Find("#raw pre").Text(), "\"course_id\": \"CMSC131\"")
}

func TestIndexUpstreamFailure(t *testing.T) {
	stub := &stubFinder{err: &umdio.FetchError{Query: "department listing CMSC", StatusCode: http.StatusInternalServerError}}
	recorder := get(t, newTestServer(stub), "/?search=1&dept=CMSC&semester=202508")
	assert.Equal(t, http.StatusBadGateway, recorder.Code)

	doc := parse(t, recorder)
	assert.Contains(t, doc.Find("#error").Text(), "department listing CMSC")
	assert.Equal(t, 0, doc.Find("table#results").Length())
}

func TestIndexInvalidSemester(t *testing.T) {
	recorder := get(t, newTestServer(&stubFinder{}), "/?search=1&dept=CMSC&semester=fall")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 1, parse(t, recorder).Find("#error").Length())
}

func TestIndexSemesterListFailure(t *testing.T) {
	stub := &stubFinder{semesterErr: &umdio.FetchError{Query: "semester list", StatusCode: http.StatusServiceUnavailable}}
	recorder := get(t, newTestServer(stub), "/")
	require.Equal(t, http.StatusOK, recorder.Code)

	doc := parse(t, recorder)
	assert.Equal(t, 1, doc.Find("#semester-warning").Length())
	assert.Equal(t, 1, doc.Find(`input[name="semester"]`).Length())
}

func TestSessionRemembersLastSearch(t *testing.T) {
	handler := newTestServer(&stubFinder{rows: sampleRows})

	first := get(t, handler, "/?search=1&dept=MATH&professor=Jane+Doe&semester=202501&open=on")
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	doc := parse(t, get(t, handler, "/", cookies...))
	assert.Equal(t, "MATH", doc.Find(`input[name="dept"]`).AttrOr("value", ""))
	assert.Equal(t, "Jane Doe", doc.Find(`input[name="professor"]`).AttrOr("value", ""))
	assert.Equal(t, "202501", doc.Find(`select[name="semester"] option[selected]`).AttrOr("value", ""))
	_, checked := doc.Find(`input[name="open"]`).Attr("checked")
	assert.True(t, checked)
	assert.Equal(t, 0, doc.Find("table#results").Length())
}

func TestSearchAPI(t *testing.T) {
	stub := &stubFinder{rows: sampleRows}
	recorder := get(t, newTestServer(stub), "/api/search?course=CMSC131")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var response searchResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "course", response.Endpoint)
	assert.Equal(t, "202508", response.Semester, "newest semester is the default")
	assert.NotNil(t, response.Warnings)
	assert.Empty(t, response.Raw)
}

func TestSearchAPIErrors(t *testing.T) {
	stub := &stubFinder{err: &umdio.FetchError{Query: "course lookup CMSC131", StatusCode: http.StatusInternalServerError}}
	recorder := get(t, newTestServer(stub), "/api/search?course=CMSC131&semester=202508")
	assert.Equal(t, http.StatusBadGateway, recorder.Code)

	var response errorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	assert.Equal(t, "course lookup CMSC131", response.Query)
	assert.NotEmpty(t, response.Error)

	recorder = get(t, newTestServer(&stubFinder{}), "/api/search?dept=CMSC&semester=fall")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListingAPIs(t *testing.T) {
	handler := newTestServer(&stubFinder{})

	var semesters []finder.Semester
	recorder := get(t, handler, "/api/semesters")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&semesters))
	assert.Len(t, semesters, 2)

	recorder = get(t, handler, "/api/departments")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"dept_id":"CMSC"`)

	recorder = get(t, handler, "/healthz")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", recorder.Body.String())

	failing := newTestServer(&stubFinder{semesterErr: &umdio.FetchError{Query: "semester list", StatusCode: http.StatusServiceUnavailable}})
	assert.Equal(t, http.StatusBadGateway, get(t, failing, "/api/semesters").Code)
}

func TestMiddleware(t *testing.T) {
	handler := newTestServer(&stubFinder{panicOnQuery: true})

	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "https://courses.example.edu")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "https://courses.example.edu", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = get(t, handler, "/?search=1&dept=CMSC&semester=202508")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	assert.Equal(t, http.StatusNotFound, get(t, handler, "/nope").Code)
}
