// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package charts

import (
	"fmt"
	"strings"

	"github.com/derat/cancer/rates"
)

// Brush is a range of age brackets selected on the heatmap.
// The zero value selects everything.
type Brush struct {
	From, To rates.Age // inclusive
	Set      bool
}

// ParseBrush parses a range like "Age 5-14:Age >64". An empty string returns the zero Brush.
// The ends may be given in either order.
func ParseBrush(s string) (Brush, error) {
	if s == "" {
		return Brush{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Brush{}, fmt.Errorf("brush %q not in form FROM:TO", s)
	}
	from, err := rates.ParseAge(strings.TrimSpace(parts[0]))
	if err != nil {
		return Brush{}, err
	}
	to, err := rates.ParseAge(strings.TrimSpace(parts[1]))
	if err != nil {
		return Brush{}, err
	}
	if to < from {
		from, to = to, from
	}
	return Brush{From: from, To: to, Set: true}, nil
}

// Contains reports whether a is selected by b.
func (b Brush) Contains(a rates.Age) bool {
	return !b.Set || (a >= b.From && a <= b.To)
}

// Filter returns the rows whose ages are selected by b.
func (b Brush) Filter(rows []rates.Record) []rates.Record {
	out := make([]rates.Record, 0, len(rows))
	for _, r := range rows {
		if b.Contains(r.Age) {
			out = append(out, r)
		}
	}
	return out
}

// Ages returns the selected brackets in order.
func (b Brush) Ages() []rates.Age {
	var ages []rates.Age
	for _, a := range rates.Ages() {
		if b.Contains(a) {
			ages = append(ages, a)
		}
	}
	return ages
}

func (b Brush) String() string {
	if !b.Set {
		return "all ages"
	}
	return b.From.String() + ":" + b.To.String()
}
