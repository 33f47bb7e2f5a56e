package finder

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"coursefinder/internal/umdio"
)

var termNames = map[string]string{
	"01": "Spring",
	"05": "Summer",
	"08": "Fall",
	"12": "Winter",
}

type Semester struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SemesterLabel maps a YYYYMM term code to "Fall 2025".
func SemesterLabel(code string) string {
	if len(code) != 6 {
		return code
	}
	year, month := code[:4], code[4:]
	term, ok := termNames[month]
	if !ok {
		term = fmt.Sprintf("Unknown %s", month)
	}
	return fmt.Sprintf("%s %s", term, year)
}

// Semesters lists the upstream's valid term codes, newest first.
func (r *Resolver) Semesters(ctx context.Context) ([]Semester, error) {
	codes, _, err := r.catalog.Semesters(ctx)
	if err != nil {
		return nil, err
	}

	codes = lo.Uniq(lo.Filter(codes, func(code string, _ int) bool {
		return validSemester(code)
	}))
	sort.Sort(sort.Reverse(sort.StringSlice(codes)))

	return lo.Map(codes, func(code string, _ int) Semester {
		return Semester{Code: code, Label: SemesterLabel(code)}
	}), nil
}

func (r *Resolver) Departments(ctx context.Context) ([]umdio.Department, error) {
	departments, _, err := r.catalog.Departments(ctx)
	if err != nil {
		return nil, err
	}

	departments = lo.UniqBy(lo.Filter(departments, func(department umdio.Department, _ int) bool {
		return department.DeptID != ""
	}), func(department umdio.Department) string {
		return department.DeptID
	})
	sort.SliceStable(departments, func(i, j int) bool {
		return departments[i].DeptID < departments[j].DeptID
	})
	return departments, nil
}
