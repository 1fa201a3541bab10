// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package rates

import "sort"

// Key uniquely identifies a Record within a Table.
type Key struct {
	Country string `json:"Country"`
	Year    int    `json:"Year"`
	Cancer  string `json:"Cancer"`
	Age     Age    `json:"Age"`
	Sex     Sex    `json:"Sex"`
}

func (k Key) less(o Key) bool {
	switch {
	case k.Country != o.Country:
		return k.Country < o.Country
	case k.Year != o.Year:
		return k.Year < o.Year
	case k.Cancer != o.Cancer:
		return k.Cancer < o.Cancer
	case k.Age != o.Age:
		return k.Age < o.Age
	default:
		return k.Sex < o.Sex
	}
}

// Record holds the mortality rate for a single demographic stratum.
type Record struct {
	Key
	Deaths float64 `json:"Deaths"`
	Pop    float64 `json:"Pop"`
	Rate   float64 `json:"Rate"` // deaths per 100,000 people
}

// Table is an immutable set of records produced by Build.
type Table struct {
	recs []Record
}

// NewTable returns a Table containing a copy of recs sorted by key.
func NewTable(recs []Record) *Table {
	t := &Table{recs: append([]Record(nil), recs...)}
	sort.SliceStable(t.recs, func(i, j int) bool { return t.recs[i].Key.less(t.recs[j].Key) })
	return t
}

// Len returns the number of records in t.
func (t *Table) Len() int { return len(t.recs) }

// Records returns a copy of t's records. Callers may modify the returned slice.
func (t *Table) Records() []Record {
	return append([]Record(nil), t.recs...)
}

// YearRange returns the earliest and latest years in t.
// ok is false if t is empty.
func (t *Table) YearRange() (min, max int, ok bool) {
	for i, r := range t.recs {
		if i == 0 || r.Year < min {
			min = r.Year
		}
		if i == 0 || r.Year > max {
			max = r.Year
		}
	}
	return min, max, len(t.recs) > 0
}

// Countries returns the distinct countries in t in order of first appearance.
func (t *Table) Countries() []string {
	return Countries(t.recs)
}

// Cancers returns the distinct cancer types in t in order of first appearance.
func (t *Table) Cancers() []string {
	return Cancers(t.recs)
}

// Countries returns the distinct countries in recs in order of first appearance.
func Countries(recs []Record) []string {
	return distinct(recs, func(r *Record) string { return r.Country })
}

// Cancers returns the distinct cancer types in recs in order of first appearance.
func Cancers(recs []Record) []string {
	return distinct(recs, func(r *Record) string { return r.Cancer })
}

func distinct(recs []Record, field func(*Record) string) []string {
	var vals []string
	seen := make(map[string]struct{})
	for i := range recs {
		v := field(&recs[i])
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			vals = append(vals, v)
		}
	}
	return vals
}
