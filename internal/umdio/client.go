package umdio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	DefaultBaseURL = "https://api.umd.io/v1"
	// MaxPerPage is the largest page size the upstream accepts.
	MaxPerPage = 100
)

// Cache stores raw upstream bodies by request URL.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	cache   Cache
	perPage int
}

type Option func(*Client)

func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithPerPage sets the page size of course listings, clamped to 1..MaxPerPage.
func WithPerPage(perPage int) Option {
	return func(c *Client) {
		c.perPage = lo.Clamp(perPage, 1, MaxPerPage)
	}
}

func NewClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base url %q", baseURL)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	client := &Client{baseURL: parsed, http: httpClient, perPage: MaxPerPage}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Courses lists courses by department, GenEd or neither, with sections expanded.
func (c *Client) Courses(ctx context.Context, query CourseQuery) ([]Course, []byte, error) {
	params := url.Values{}
	params.Set("expand", "sections")
	params.Set("per_page", strconv.Itoa(c.perPage))
	if query.DeptID != "" {
		params.Set("dept_id", query.DeptID)
	}
	if query.GenEd != "" {
		params.Set("gen_ed", query.GenEd)
	}
	if query.Semester != "" {
		params.Set("semester", query.Semester)
	}
	if query.Page > 1 {
		params.Set("page", strconv.Itoa(query.Page))
	}

	var courses []Course
	body, err := c.get(ctx, describeListing(query), "/courses", params, func(body []byte) error {
		var err error
		courses, err = decodeList[Course](body)
		return err
	})
	return courses, body, err
}

// CoursesByID looks up one or more courses by their exact codes in a single call.
func (c *Client) CoursesByID(ctx context.Context, ids []string, semester string) ([]Course, []byte, error) {
	if len(ids) == 0 {
		return nil, nil, errors.New("at least one course id is required")
	}

	params := url.Values{}
	params.Set("expand", "sections")
	if semester != "" {
		params.Set("semester", semester)
	}

	escaped := lo.Map(ids, func(id string, _ int) string {
		return url.PathEscape(id)
	})
	endpoint := "/courses/" + strings.Join(escaped, ",")
	query := fmt.Sprintf("course lookup %s", strings.Join(ids, ","))

	var courses []Course
	body, err := c.get(ctx, query, endpoint, params, func(body []byte) error {
		var err error
		courses, err = decodeList[Course](body)
		return err
	})
	return courses, body, err
}

func (c *Client) Professors(ctx context.Context, name string) ([]Professor, []byte, error) {
	params := url.Values{}
	params.Set("name", name)

	var professors []Professor
	body, err := c.get(ctx, fmt.Sprintf("professor lookup %q", name), "/professors", params, func(body []byte) error {
		var err error
		professors, err = decodeList[Professor](body)
		return err
	})
	return professors, body, err
}

// Semesters returns the term codes the upstream knows about, in upstream order.
func (c *Client) Semesters(ctx context.Context) ([]string, []byte, error) {
	var codes []Text
	body, err := c.get(ctx, "semester list", "/courses/semesters", nil, func(body []byte) error {
		return json.Unmarshal(body, &codes)
	})
	if err != nil {
		return nil, body, err
	}

	semesters := lo.FilterMap(codes, func(code Text, _ int) (string, bool) {
		return code.String(), code != ""
	})
	return semesters, body, nil
}

func (c *Client) Departments(ctx context.Context) ([]Department, []byte, error) {
	var departments []Department
	body, err := c.get(ctx, "department list", "/courses/departments", nil, func(body []byte) error {
		return json.Unmarshal(body, &departments)
	})
	return departments, body, err
}

// get performs a cached GET. A cached body is only used if it still decodes, and a
// fetched body is only cached once it decoded.
func (c *Client) get(ctx context.Context, query string, endpoint string, params url.Values, decode func(body []byte) error) ([]byte, error) {
	target := *c.baseURL
	target.Path = c.baseURL.Path + endpoint
	target.RawQuery = params.Encode()
	key := fmt.Sprintf("umdio:%s", target.String())

	if c.cache != nil {
		if body, found := c.cache.Get(key); found {
			err := decode(body)
			if err == nil {
				log.Debug().Str("key", key).Msg("Cache Hit")
				return body, nil
			}
			log.Warn().Err(err).Str("key", key).Msg("Discarding Undecodable Cache Entry")
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{Query: query, URL: target.String(), Err: err}
	}
	applyHeaders(request)

	response, body, err := doRequest(c.http, request)
	if err != nil {
		return nil, &FetchError{Query: query, URL: target.String(), Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return body, &FetchError{
			Query:      query,
			URL:        target.String(),
			StatusCode: response.StatusCode,
			Message:    errorMessage(response, body),
		}
	}

	if err := decode(body); err != nil {
		log.Error().Err(err).Str("content-type", response.Header.Get("Content-Type")).Int("content-length", len(body)).
			Msg("Unparsable Response")
		return body, &FetchError{
			Query:   query,
			URL:     target.String(),
			Message: "malformed response",
			Err:     errors.Wrap(err, "failed to decode response"),
		}
	}

	if c.cache != nil {
		log.Debug().Str("key", key).Msg("Saving to Response Cache")
		c.cache.Set(key, body)
	}

	return body, nil
}

// errorMessage pulls the upstream's own explanation out of an error response when
// it sent JSON.
func errorMessage(response *http.Response, body []byte) string {
	contentType := response.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return ""
	}

	var errorResponse ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil {
		log.Warn().Err(err).Msg("Error parsing error response")
		return ""
	}
	return errorResponse.Message
}

func describeListing(query CourseQuery) string {
	var description string
	switch {
	case query.DeptID != "" && query.GenEd != "":
		description = fmt.Sprintf("department listing %s with GenEd %s", query.DeptID, query.GenEd)
	case query.DeptID != "":
		description = fmt.Sprintf("department listing %s", query.DeptID)
	case query.GenEd != "":
		description = fmt.Sprintf("GenEd listing %s", query.GenEd)
	default:
		description = "course listing"
	}
	if query.Semester != "" {
		description += fmt.Sprintf(" (%s)", query.Semester)
	}
	return description
}
