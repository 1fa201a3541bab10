// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package main

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/derat/cancer/rates"
	"github.com/google/go-cmp/cmp"
)

const (
	ageHeader  = "Age <5,Age 5-14,Age 15-24,Age 25-34,Age 35-44,Age 45-54,Age 55-64,Age >64"
	testDeaths = "Country,Year,Cancer,Sex," + ageHeader + "\n" +
		"Spain,2000,Malignant neoplasm of stomach,M,1,2,3,4,5,6,7,8\n" +
		"Spain,2000,Leukaemia,M,1,1,1,1,1,1,1,1\n"
	testPop = "Country,Year,Sex," + ageHeader + "\n" +
		"Spain,2000,M,1000,1000,1000,1000,1000,1000,1000,1000\n"
)

// run writes the test sources to a temp dir and runs the dashboard command with args.
// The command's standard output is returned.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	dp := filepath.Join(dir, "deaths.csv")
	pp := filepath.Join(dir, "population.csv")
	if err := os.WriteFile(dp, []byte(testDeaths), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pp, []byte(testPop), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config{FetchTimeout: time.Minute}
	cmd := newRootCommand(&cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--deaths", dp, "--population", pp}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CANCER_DEATHS_URL", "/tmp/deaths.csv")
	t.Setenv("CANCER_FETCH_TIMEOUT", "5s")
	got, err := loadConfig()
	if err != nil {
		t.Fatal("loadConfig failed: ", err)
	}
	want := config{
		DeathsURL:     "/tmp/deaths.csv",
		PopulationURL: rates.DefaultPopulationURL,
		Addr:          ":8080",
		FetchTimeout:  5 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error("loadConfig returned wrong config:\n" + diff)
	}
}

func TestLoadConfig_BadTimeout(t *testing.T) {
	t.Setenv("CANCER_FETCH_TIMEOUT", "soon")
	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig unexpectedly succeeded with bad timeout")
	}
}

func TestExport_CSV(t *testing.T) {
	out, err := run(t, "export")
	if err != nil {
		t.Fatal("export failed: ", err)
	}
	lines, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal("Reading CSV failed: ", err)
	}
	// Both cancer types are exported when no selection flags are passed.
	if len(lines) != 1+2*rates.NumAges {
		t.Errorf("export wrote %v lines; want %v", len(lines), 1+2*rates.NumAges)
	}
}

func TestExport_Filtered(t *testing.T) {
	out, err := run(t, "export", "--cancer", "Leukaemia", "--country", "Spain")
	if err != nil {
		t.Fatal("export failed: ", err)
	}
	lines, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal("Reading CSV failed: ", err)
	}
	if len(lines) != 1+rates.NumAges {
		t.Fatalf("export wrote %v lines; want %v", len(lines), 1+rates.NumAges)
	}
	for _, ln := range lines[1:] {
		if ln[2] != "Leukaemia" {
			t.Errorf("export wrote %q row", ln[2])
		}
	}
}

func TestExport_SQLite(t *testing.T) {
	p := filepath.Join(t.TempDir(), "rates.db")
	if _, err := run(t, "export", "--format", "sqlite", "--out", p); err != nil {
		t.Fatal("export failed: ", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Error("Database not written: ", err)
	}
}

func TestExport_BadArgs(t *testing.T) {
	for _, args := range [][]string{
		{"export", "--format", "xml"},
		{"export", "--format", "sqlite"},
		{"export", "--sex", "X"},
		{"export", "--year", "1900"},
	} {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%q unexpectedly succeeded", args)
		}
	}
}

func TestSummarize(t *testing.T) {
	out, err := run(t, "summarize")
	if err != nil {
		t.Fatal("summarize failed: ", err)
	}
	for _, s := range []string{"Malignant neoplasm of stomach, males, 2000", "Spain", "100.00", "450.00", "800.00"} {
		if !strings.Contains(out, s) {
			t.Errorf("summarize output doesn't contain %q:\n%s", s, out)
		}
	}
}

func TestPlot_BadBrush(t *testing.T) {
	if _, err := run(t, "plot", "--brush", "Age 5-14"); err == nil {
		t.Error("plot unexpectedly succeeded with bad brush")
	}
}
