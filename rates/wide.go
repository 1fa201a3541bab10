// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package rates

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Value is a number read from a CSV cell that may have been empty.
type Value struct {
	Num   float64
	Valid bool // false if the cell was empty
}

// Known returns a valid Value holding v.
func Known(v float64) Value { return Value{v, true} }

func (v Value) String() string {
	if !v.Valid {
		return "?"
	}
	return strconv.FormatFloat(v.Num, 'g', -1, 64)
}

// ID holds the identifier columns of a source row.
// Cancer is empty for population rows.
type ID struct {
	Country string
	Year    int
	Cancer  string
	Sex     Sex
}

// WideRow is a row of a source CSV file with one value per age bracket.
type WideRow struct {
	ID
	Values [NumAges]Value
}

// LongRow holds a single age bracket's value from a WideRow.
type LongRow struct {
	ID
	Age   Age
	Value Value
}

// ReadDeaths parses the cancer deaths CSV file, which has "Country", "Year", "Cancer", "Sex"
// and per-age-bracket columns.
func ReadDeaths(r io.Reader) ([]WideRow, error) {
	return readWide(r, true)
}

// ReadPopulation parses the population CSV file, which has "Country", "Year", "Sex"
// and per-age-bracket columns.
func ReadPopulation(r io.Reader) ([]WideRow, error) {
	return readWide(r, false)
}

func readWide(r io.Reader, hasCancer bool) ([]WideRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	// Find the positions of columns that we care about.
	cols, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed reading header")
	}
	find := func(name string) (int, error) {
		for i, s := range cols {
			if strings.TrimSpace(strings.TrimLeft(s, "\ufeff")) == name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("missing column %q", name)
	}

	var countryCol, yearCol, cancerCol, sexCol int
	idCols := map[string]*int{"Country": &countryCol, "Year": &yearCol, "Sex": &sexCol}
	if hasCancer {
		idCols["Cancer"] = &cancerCol
	}
	for name, dst := range idCols {
		if *dst, err = find(name); err != nil {
			return nil, err
		}
	}
	var ageCols [NumAges]int
	for _, a := range Ages() {
		if ageCols[a], err = find(a.String()); err != nil {
			return nil, err
		}
	}

	var rows []WideRow
	for line := 2; ; line++ {
		vals, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		get := func(i int) string {
			if i < len(vals) {
				return strings.TrimSpace(vals[i])
			}
			return ""
		}

		// Rows without identifiers would be dropped after joining anyway.
		country, ys, sex := get(countryCol), get(yearCol), get(sexCol)
		if country == "" || ys == "" || sex == "" {
			continue
		}
		year, err := parseYear(ys)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", line, err)
		}
		row := WideRow{ID: ID{Country: country, Year: year, Sex: Sex(sex)}}
		if hasCancer {
			if row.Cancer = get(cancerCol); row.Cancer == "" {
				continue
			}
		}
		for a, col := range ageCols {
			s := get(col)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad %v value %q", line, Age(a), s)
			}
			row.Values[a] = Known(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseYear accepts both "1990" and "1990.0", since some exports write years as floats.
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("bad year %q", s)
	}
	return int(f), nil
}

// Melt reshapes rows into long form, producing one LongRow per age bracket
// for each WideRow. Order is preserved: all brackets of the first row come first.
func Melt(rows []WideRow) []LongRow {
	long := make([]LongRow, 0, len(rows)*NumAges)
	for _, r := range rows {
		for a, v := range r.Values {
			long = append(long, LongRow{ID: r.ID, Age: Age(a), Value: v})
		}
	}
	return long
}

// Widen is the inverse of Melt. Wide rows are returned in order of their first appearance
// in rows. Brackets absent from rows are left unknown. An error is returned if the same
// ID and bracket appear more than once.
func Widen(rows []LongRow) ([]WideRow, error) {
	var wide []WideRow
	index := make(map[ID]int)
	seen := make(map[ID]*[NumAges]bool)
	for _, r := range rows {
		if !r.Age.Valid() {
			return nil, fmt.Errorf("invalid age bracket %d", int(r.Age))
		}
		i, ok := index[r.ID]
		if !ok {
			i = len(wide)
			index[r.ID] = i
			seen[r.ID] = new([NumAges]bool)
			wide = append(wide, WideRow{ID: r.ID})
		}
		if seen[r.ID][r.Age] {
			return nil, fmt.Errorf("duplicate %v value for %+v", r.Age, r.ID)
		}
		seen[r.ID][r.Age] = true
		wide[i].Values[r.Age] = r.Value
	}
	return wide, nil
}
