// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/derat/cancer/rates"
	"github.com/derat/cancer/selection"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func rec(country string, year int, cancer string, sex rates.Sex, age rates.Age, rate float64) rates.Record {
	return rates.Record{
		Key:    rates.Key{Country: country, Year: year, Cancer: cancer, Age: age, Sex: sex},
		Deaths: rate,
		Pop:    100000,
		Rate:   rate,
	}
}

func newTestServer(t *testing.T) *Server {
	tbl := rates.NewTable([]rates.Record{
		rec("Spain", 2000, selection.DefaultCancer, rates.Male, 0, 1),
		rec("Spain", 2000, selection.DefaultCancer, rates.Male, 7, 2),
		rec("Spain", 2000, selection.DefaultCancer, rates.Female, 7, 3),
		rec("Turkey", 2001, "Leukaemia", rates.Female, 3, 4),
	})
	return New(rates.NewCache(func(context.Context) (*rates.Table, error) { return tbl, nil }), nil)
}

// get sends a GET request for target to s and returns the recorded response.
func get(s *Server, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("Got status %v (%q); want %v", w.Code, w.Body.String(), http.StatusOK)
	}
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatal("Decoding response failed: ", err)
	}
}

func TestServer_ChartDefaults(t *testing.T) {
	var got struct {
		Params  selection.Params `json:"params"`
		Rows    []rates.Record   `json:"rows"`
		Message string           `json:"message"`
		Missing []string         `json:"missing"`
		Title   string           `json:"title"`
		Spec    struct {
			Schema  string            `json:"$schema"`
			VConcat []json.RawMessage `json:"vconcat"`
		} `json:"spec"`
	}
	decode(t, get(newTestServer(t), "/api/chart"), &got)

	if got.Params.Year != 2000 || got.Params.Sex != rates.Male || got.Params.Cancer != selection.DefaultCancer {
		t.Errorf("Got params %v; want defaults", got.Params)
	}
	if len(got.Rows) != 2 {
		t.Errorf("Got %v rows; want 2", len(got.Rows))
	}
	// Most of the default countries aren't in the test table.
	if !strings.HasPrefix(got.Message, "No data available for Austria, Germany") {
		t.Errorf("Got message %q", got.Message)
	}
	if want := "Malignant neoplasm of stomach mortality rates for males in 2000"; got.Title != want {
		t.Errorf("Got title %q; want %q", got.Title, want)
	}
	if !strings.Contains(got.Spec.Schema, "vega-lite/v5") || len(got.Spec.VConcat) != 2 {
		t.Errorf("Got bad spec with schema %q and %d views", got.Spec.Schema, len(got.Spec.VConcat))
	}
}

func TestServer_ChartParams(t *testing.T) {
	var got struct {
		Params  selection.Params `json:"params"`
		Rows    []rates.Record   `json:"rows"`
		Message string           `json:"message"`
		Missing []string         `json:"missing"`
	}
	decode(t, get(newTestServer(t), "/api/chart?year=2001&sex=F&country=Turkey&country=Atlantis&cancer=Bogus"), &got)

	want := selection.Params{Year: 2001, Sex: rates.Female, Countries: []string{"Turkey", "Atlantis"}, Cancer: "Leukaemia"}
	if diff := cmp.Diff(want, got.Params); diff != "" {
		t.Error("Got wrong params:\n" + diff)
	}
	if len(got.Rows) != 1 || got.Rows[0].Rate != 4 {
		t.Errorf("Got rows %+v; want single row with rate 4", got.Rows)
	}
	if diff := cmp.Diff([]string{"Atlantis"}, got.Missing); diff != "" {
		t.Error("Got wrong missing countries:\n" + diff)
	}
	if want := "No data available for Atlantis."; got.Message != want {
		t.Errorf("Got message %q; want %q", got.Message, want)
	}
}

func TestServer_ChartNoData(t *testing.T) {
	var got struct {
		Rows    []rates.Record `json:"rows"`
		Message string         `json:"message"`
	}
	decode(t, get(newTestServer(t), "/api/chart?country=Atlantis"), &got)
	if len(got.Rows) != 0 {
		t.Errorf("Got %v rows; want 0", len(got.Rows))
	}
	if got.Message != selection.NoDataMessage {
		t.Errorf("Got message %q; want %q", got.Message, selection.NoDataMessage)
	}
}

func TestServer_Options(t *testing.T) {
	var got optionsResponse
	decode(t, get(newTestServer(t), "/api/options"), &got)
	if got.MinYear != 2000 || got.MaxYear != 2001 {
		t.Errorf("Got year range [%v, %v]; want [2000, 2001]", got.MinYear, got.MaxYear)
	}
	if diff := cmp.Diff([]string{"Spain", "Turkey"}, got.Countries); diff != "" {
		t.Error("Got wrong countries:\n" + diff)
	}
}

func TestServer_BadRequests(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{
		"/api/chart?year=1800",
		"/api/chart?year=abc",
		"/api/chart?sex=X",
		"/api/options?sex=male",
	} {
		if w := get(s, target); w.Code != http.StatusBadRequest {
			t.Errorf("GET %v returned %v; want %v", target, w.Code, http.StatusBadRequest)
		}
	}
}

func TestServer_LoadFailure(t *testing.T) {
	s := New(rates.NewCache(func(context.Context) (*rates.Table, error) {
		return nil, errors.New("network down")
	}), nil)
	for _, target := range []string{"/api/chart", "/api/options"} {
		if w := get(s, target); w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %v returned %v; want %v", target, w.Code, http.StatusServiceUnavailable)
		}
	}
}

func TestServer_Pages(t *testing.T) {
	s := newTestServer(t)
	for _, tc := range []struct {
		target string
		code   int
		substr string
	}{
		{"/", http.StatusOK, "vega-embed"},
		{"/healthz", http.StatusOK, "ok"},
		{"/metrics", http.StatusOK, "dashboard_requests_count"},
		{"/bogus", http.StatusNotFound, ""},
	} {
		w := get(s, tc.target)
		if w.Code != tc.code {
			t.Errorf("GET %v returned %v; want %v", tc.target, w.Code, tc.code)
		} else if !strings.Contains(w.Body.String(), tc.substr) {
			t.Errorf("GET %v response doesn't contain %q", tc.target, tc.substr)
		}
	}
}

func TestInstrumentLoad(t *testing.T) {
	want := rates.NewTable([]rates.Record{rec("Spain", 2000, "Leukaemia", rates.Male, 0, 1)})
	load := InstrumentLoad(func(context.Context) (*rates.Table, error) { return want, nil })
	if got, err := load(context.Background()); err != nil {
		t.Error("Load failed: ", err)
	} else if got != want {
		t.Errorf("Load returned %p; want %p", got, want)
	}

	fail := InstrumentLoad(func(context.Context) (*rates.Table, error) { return nil, errors.New("fail") })
	if _, err := fail(context.Background()); err == nil {
		t.Error("Load unexpectedly succeeded")
	}
}
