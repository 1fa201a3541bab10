// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package selection narrows a mortality table down to the rows chosen by the user.
package selection

import (
	"fmt"
	"strings"

	"github.com/derat/cancer/rates"
	"github.com/pkg/errors"
)

// DefaultCancer is selected when the user hasn't picked a cancer type.
const DefaultCancer = "Malignant neoplasm of stomach"

// DefaultCountries are selected when the user hasn't picked any countries.
var DefaultCountries = []string{
	"Austria",
	"Germany",
	"Iceland",
	"Spain",
	"Sweden",
	"Thailand",
	"Turkey",
}

var (
	ErrNoData         = errors.New("table is empty")
	ErrYearOutOfRange = errors.New("year out of range")
	ErrInvalidSex     = errors.New("invalid sex")
)

// NoDataMessage is reported when none of the requested countries have data.
const NoDataMessage = "No data available for the given subset."

// Params describes the user's choices.
type Params struct {
	Year      int       `json:"year"`
	Sex       rates.Sex `json:"sex"`
	Countries []string  `json:"countries"`
	Cancer    string    `json:"cancer"`
}

// Defaults returns the initial choices for t.
func Defaults(t *rates.Table) Params {
	min, _, _ := t.YearRange()
	return Params{
		Year:      min,
		Sex:       rates.Male,
		Countries: append([]string(nil), DefaultCountries...),
		Cancer:    DefaultCancer,
	}
}

// Result holds the rows selected by Apply along with the options to offer for each choice.
type Result struct {
	Params  Params         `json:"params"` // Cancer is the one actually used
	Rows    []rates.Record `json:"rows"`
	MinYear int            `json:"minYear"`
	MaxYear int            `json:"maxYear"`
	// AllCountries contains every country in the table.
	AllCountries []string `json:"allCountries"`
	// Cancers contains the cancer types present after filtering by year, sex and countries.
	Cancers []string `json:"cancers"`
	// Missing contains requested countries without any rows for the year and sex.
	Missing []string `json:"missing"`
	// Message is a user-visible note about missing data, or empty.
	Message string `json:"message"`
}

// Apply filters t by year, sex, countries, and cancer type, in that order.
func Apply(t *rates.Table, p Params) (*Result, error) {
	min, max, ok := t.YearRange()
	if !ok {
		return nil, ErrNoData
	}
	if p.Year < min || p.Year > max {
		return nil, errors.Wrapf(ErrYearOutOfRange, "%d not in [%d, %d]", p.Year, min, max)
	}
	if !p.Sex.Valid() {
		return nil, errors.Wrapf(ErrInvalidSex, "%q", p.Sex)
	}

	p.Countries = dedupe(p.Countries)
	res := &Result{
		MinYear:      min,
		MaxYear:      max,
		AllCountries: t.Countries(),
	}

	rows := ByYear(t.Records(), p.Year)
	rows = BySex(rows, p.Sex)
	rows = ByCountries(rows, p.Countries)
	res.Missing, res.Message = Coverage(p.Countries, rows)

	res.Cancers = rates.Cancers(rows)
	p.Cancer = ResolveCancer(res.Cancers, p.Cancer)
	res.Rows = ByCancer(rows, p.Cancer)
	res.Params = p
	return res, nil
}

// Coverage reports which requested countries have no rows in rows,
// along with a message describing them. The message is empty if all countries
// are present.
func Coverage(requested []string, rows []rates.Record) (missing []string, msg string) {
	present := make(map[string]struct{})
	for _, r := range rows {
		present[r.Country] = struct{}{}
	}
	for _, c := range dedupe(requested) {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	switch {
	case len(present) == 0:
		return missing, NoDataMessage
	case len(missing) > 0:
		return missing, "No data available for " + strings.Join(missing, ", ") + "."
	default:
		return nil, ""
	}
}

// ResolveCancer returns the cancer type to use given the available options.
// want is used if present, followed by DefaultCancer and then the first option.
// An empty string is returned if there are no options.
func ResolveCancer(options []string, want string) string {
	for _, c := range []string{want, DefaultCancer} {
		for _, o := range options {
			if c != "" && o == c {
				return o
			}
		}
	}
	if len(options) > 0 {
		return options[0]
	}
	return ""
}

// ByYear returns the rows for year.
func ByYear(rows []rates.Record, year int) []rates.Record {
	return filter(rows, func(r *rates.Record) bool { return r.Year == year })
}

// BySex returns the rows for sex.
func BySex(rows []rates.Record, sex rates.Sex) []rates.Record {
	return filter(rows, func(r *rates.Record) bool { return r.Sex == sex })
}

// ByCountries returns the rows for any of countries.
func ByCountries(rows []rates.Record, countries []string) []rates.Record {
	set := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		set[c] = struct{}{}
	}
	return filter(rows, func(r *rates.Record) bool {
		_, ok := set[r.Country]
		return ok
	})
}

// ByCancer returns the rows for cancer.
func ByCancer(rows []rates.Record, cancer string) []rates.Record {
	return filter(rows, func(r *rates.Record) bool { return r.Cancer == cancer })
}

// filter returns a new slice containing the rows matched by keep.
func filter(rows []rates.Record, keep func(*rates.Record) bool) []rates.Record {
	out := make([]rates.Record, 0, len(rows))
	for i := range rows {
		if keep(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

// dedupe returns vals without empty or repeated strings, preserving order.
func dedupe(vals []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range vals {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (p Params) String() string {
	return fmt.Sprintf("%s %s %d [%s]", p.Cancer, p.Sex, p.Year, strings.Join(p.Countries, ", "))
}
