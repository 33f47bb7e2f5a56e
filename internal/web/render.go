package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"

	"coursefinder/internal/finder"
)

var templateFuncs = template.FuncMap{
	"semesterLabel": finder.SemesterLabel,
	"join":          strings.Join,
	"seatClass":     seatClass,
	"prettyJSON":    prettyJSON,
}

func seatClass(row finder.Row) string {
	switch {
	case row.SectionID == "":
		return "seats-unknown"
	case row.OpenSeats <= 0:
		return "seats-full"
	case row.OpenSeats <= 5:
		return "seats-low"
	}
	return "seats-open"
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
