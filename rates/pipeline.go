// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package rates loads cancer death and population counts and computes
// age-specific mortality rates from them.
package rates

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

// perPop is the population size that rates are expressed against.
const perPop = 100_000

// Stats describes how many rows passed through each stage of Build.
type Stats struct {
	DeathRows      int // wide rows read from the deaths file
	PopulationRows int // wide rows read from the population file
	Joined         int // long rows after the left join
	Unmatched      int // joined rows with no population match
	Backfilled     int // rows whose population was taken from a later year
	Dropped        int // rows removed because a value was still unknown
	Records        int // rows in the final table
}

// joinedRow is a long deaths row with its matching population value.
type joinedRow struct {
	ID
	Age    Age
	Deaths Value
	Pop    Value
}

// Build reads the deaths and population CSV files and computes mortality rates:
//
//  1. Both files are melted from one column per age bracket to one row per bracket.
//  2. Deaths rows are left-joined to population rows on (Country, Year, Sex, Age).
//  3. Missing populations are backfilled from later years of the same (Country, Sex, Age).
//  4. Rows that still have unknown values are dropped.
//  5. Rows are summed by (Country, Year, Cancer, Age, Sex) and rates are derived.
//
// Note that step 5 sums Pop along with Deaths, so if the deaths file lists the same key
// more than once, the (cancer-independent) population is counted once per duplicate.
func Build(deaths, pop io.Reader) (*Table, Stats, error) {
	var st Stats
	dw, err := ReadDeaths(deaths)
	if err != nil {
		return nil, st, errors.Wrap(err, "deaths")
	}
	pw, err := ReadPopulation(pop)
	if err != nil {
		return nil, st, errors.Wrap(err, "population")
	}
	st.DeathRows = len(dw)
	st.PopulationRows = len(pw)

	rows := join(Melt(dw), Melt(pw))
	st.Joined = len(rows)
	for _, r := range rows {
		if !r.Pop.Valid {
			st.Unmatched++
		}
	}
	st.Backfilled = backfill(rows)
	complete := dropIncomplete(rows)
	st.Dropped = len(rows) - len(complete)

	recs := deriveRates(aggregate(complete))
	st.Records = len(recs)
	return &Table{recs: recs}, st, nil
}

// joinKey is the key shared by the deaths and population tables.
type joinKey struct {
	Country string
	Year    int
	Sex     Sex
	Age     Age
}

// join left-joins deaths to pops. Every deaths row appears in the result at least once;
// a deaths row matching several population rows is repeated once per match.
func join(deaths, pops []LongRow) []joinedRow {
	pm := make(map[joinKey][]Value)
	for _, p := range pops {
		k := joinKey{p.Country, p.Year, p.Sex, p.Age}
		pm[k] = append(pm[k], p.Value)
	}

	rows := make([]joinedRow, 0, len(deaths))
	for _, d := range deaths {
		r := joinedRow{ID: d.ID, Age: d.Age, Deaths: d.Value}
		vals := pm[joinKey{d.Country, d.Year, d.Sex, d.Age}]
		if len(vals) == 0 {
			rows = append(rows, r)
			continue
		}
		for _, v := range vals {
			r.Pop = v
			rows = append(rows, r)
		}
	}
	return rows
}

// partKey identifies a group of rows that population values may be copied between.
type partKey struct {
	Country string
	Sex     Sex
	Age     Age
}

// backfill fills unknown populations in rows from the next known value in the same
// (Country, Sex, Age) partition, ordered by year. Rows are updated in place and keep
// their positions. The number of filled rows is returned.
func backfill(rows []joinedRow) int {
	parts := make(map[partKey][]int)
	var keys []partKey
	for i, r := range rows {
		k := partKey{r.Country, r.Sex, r.Age}
		if _, ok := parts[k]; !ok {
			keys = append(keys, k)
		}
		parts[k] = append(parts[k], i)
	}

	filled := 0
	for _, k := range keys {
		idx := parts[k]
		sort.SliceStable(idx, func(i, j int) bool { return rows[idx[i]].Year < rows[idx[j]].Year })

		var next Value
		for i := len(idx) - 1; i >= 0; i-- {
			r := &rows[idx[i]]
			if r.Pop.Valid {
				next = r.Pop
			} else if next.Valid {
				r.Pop = next
				filled++
			}
		}
	}
	return filled
}

// dropIncomplete returns the rows from rows that have known deaths and population.
func dropIncomplete(rows []joinedRow) []joinedRow {
	var out []joinedRow
	for _, r := range rows {
		if r.Deaths.Valid && r.Pop.Valid {
			out = append(out, r)
		}
	}
	return out
}

// aggregate sums deaths and population over rows sharing a record key.
// The returned records are sorted by key, with ages in bracket order.
func aggregate(rows []joinedRow) []Record {
	index := make(map[Key]int)
	var recs []Record
	for _, r := range rows {
		k := Key{r.Country, r.Year, r.Cancer, r.Age, r.Sex}
		i, ok := index[k]
		if !ok {
			i = len(recs)
			index[k] = i
			recs = append(recs, Record{Key: k})
		}
		recs[i].Deaths += r.Deaths.Num
		recs[i].Pop += r.Pop.Num
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key.less(recs[j].Key) })
	return recs
}

// deriveRates sets the Rate field of each record. Records with zero population have
// no meaningful rate and are omitted.
func deriveRates(recs []Record) []Record {
	out := recs[:0]
	for _, r := range recs {
		if r.Pop == 0 {
			continue
		}
		r.Rate = r.Deaths * perPop / r.Pop
		out = append(out, r)
	}
	return out
}
