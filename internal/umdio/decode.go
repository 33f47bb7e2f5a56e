package umdio

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The upstream is loose about JSON types: term codes and credits show up as
// numbers or strings, seat counts as numbers, numeric strings or an object, and
// sections either expanded or as bare ids. Everything below decodes the loose
// shapes into one Go shape and turns unusable values into zero values.

// Text is a string field that may arrive as a JSON string or number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case string:
		*t = Text(strings.TrimSpace(v))
	case float64:
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		*t = ""
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Count is an integer field that may arrive as a JSON number or numeric string.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	switch v := value.(type) {
	case float64:
		*c = Count(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			n = 0
		}
		*c = Count(n)
	default:
		*c = 0
	}
	return nil
}

// GenEds flattens the nested gen_ed lists into a single list of codes.
type GenEds []string

func (g *GenEds) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	*g = flattenGenEds(value, nil)
	return nil
}

func flattenGenEds(value interface{}, flat []string) []string {
	switch v := value.(type) {
	case string:
		if code := strings.TrimSpace(v); code != "" {
			flat = append(flat, code)
		}
	case []interface{}:
		for _, item := range v {
			flat = flattenGenEds(item, flat)
		}
	}
	return flat
}

type Sections []Section

func (s *Sections) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "failed to decode sections")
	}

	sections := make(Sections, 0, len(items))
	for _, item := range items {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			sections = append(sections, Section{ID: id})
			continue
		}

		var section Section
		if err := json.Unmarshal(item, &section); err != nil {
			return errors.Wrap(err, "failed to decode section")
		}
		sections = append(sections, section)
	}

	*s = sections
	return nil
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID          string          `json:"section_id"`
		Course      string          `json:"course"`
		Semester    Text            `json:"semester"`
		Instructors []string        `json:"instructors"`
		Seats       json.RawMessage `json:"seats"`
		OpenSeats   *Count          `json:"open_seats"`
		Waitlist    Count           `json:"waitlist"`
		Meetings    []Meeting       `json:"meetings"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*s = Section{
		ID:          wire.ID,
		Course:      wire.Course,
		Semester:    wire.Semester,
		Instructors: wire.Instructors,
		Waitlist:    wire.Waitlist,
		Meetings:    wire.Meetings,
		Expanded:    true,
	}
	if wire.OpenSeats != nil {
		s.OpenSeats = *wire.OpenSeats
	}

	seats := bytes.TrimSpace(wire.Seats)
	if len(seats) == 0 {
		return nil
	}

	// older feeds nest both counts under "seats"
	if seats[0] == '{' {
		var split struct {
			Open  Count `json:"open"`
			Total Count `json:"total"`
		}
		if err := json.Unmarshal(seats, &split); err != nil {
			return errors.Wrap(err, "failed to decode seats")
		}
		s.Seats = split.Total
		if wire.OpenSeats == nil {
			s.OpenSeats = split.Open
		}
		return nil
	}

	return json.Unmarshal(seats, &s.Seats)
}

func (t *Taught) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*t = Taught{CourseID: strings.TrimSpace(id)}
		return nil
	}

	var wire struct {
		CourseID string `json:"course_id"`
		Semester Text   `json:"semester"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*t = Taught{CourseID: strings.TrimSpace(wire.CourseID), Semester: wire.Semester.String()}
	return nil
}

func (d *Department) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*d = Department{DeptID: id}
		return nil
	}

	type plain Department
	var wire plain
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*d = Department(wire)
	return nil
}

// decodeList decodes a body that holds either a single object or an array of them.
// The single-course endpoint answers one id with an object and several with an array.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []T{one}, nil
	}

	var many []T
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, err
	}
	return many, nil
}
