// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package rates

import "fmt"

// Age is one of the fixed age brackets used as columns in the source CSV files.
// Brackets are ordered from youngest to oldest.
type Age int

const (
	ageUnder5 Age = iota
	age5To14
	age15To24
	age25To34
	age35To44
	age45To54
	age55To64
	ageOver64

	NumAges = int(ageOver64) + 1
)

var ageNames = [NumAges]string{
	"Age <5",
	"Age 5-14",
	"Age 15-24",
	"Age 25-34",
	"Age 35-44",
	"Age 45-54",
	"Age 55-64",
	"Age >64",
}

// Ages returns all brackets in display order.
func Ages() []Age {
	ages := make([]Age, NumAges)
	for i := range ages {
		ages[i] = Age(i)
	}
	return ages
}

// AgeNames returns the bracket labels in display order, e.g. for sorting chart axes.
func AgeNames() []string {
	names := make([]string, NumAges)
	copy(names, ageNames[:])
	return names
}

// ParseAge returns the bracket with the supplied label, e.g. "Age 15-24".
func ParseAge(s string) (Age, error) {
	for i, n := range ageNames {
		if n == s {
			return Age(i), nil
		}
	}
	return 0, fmt.Errorf("invalid age bracket %q", s)
}

func (a Age) Valid() bool { return a >= 0 && int(a) < NumAges }

func (a Age) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Age(%d)", int(a))
	}
	return ageNames[a]
}

func (a Age) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid age bracket %d", int(a))
	}
	return []byte(ageNames[a]), nil
}

func (a *Age) UnmarshalText(b []byte) error {
	var err error
	*a, err = ParseAge(string(b))
	return err
}

// Sex is the value of the "Sex" column.
type Sex string

const (
	Male   Sex = "M"
	Female Sex = "F"
)

// Valid reports whether s is one of the two codes used by the datasets.
func (s Sex) Valid() bool { return s == Male || s == Female }

// Label returns the plural noun used in chart titles.
func (s Sex) Label() string {
	if s == Male {
		return "males"
	}
	return "females"
}
