// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package rates

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const (
	testDeaths = "Country,Year,Cancer,Sex," + ageHeader + "\n" +
		"Spain,2000,Malignant neoplasm of stomach,M,1,2,3,4,5,6,7,8\n"
	testPop = "Country,Year,Sex," + ageHeader + "\n" +
		"Spain,2000,M,1000,1000,1000,1000,1000,1000,1000,1000\n"
)

func newSourceServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/deaths.csv", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, testDeaths)
	})
	mux.HandleFunc("/population.csv", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, testPop)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load(t *testing.T) {
	srv := newSourceServer(t)
	l := Loader{
		DeathsURL:     srv.URL + "/deaths.csv",
		PopulationURL: srv.URL + "/population.csv",
		Client:        srv.Client(),
	}
	tbl, err := l.Load(context.Background())
	if err != nil {
		t.Fatal("Load failed: ", err)
	}
	if tbl.Len() != NumAges {
		t.Errorf("Load returned %v records; want %v", tbl.Len(), NumAges)
	}
}

func TestLoader_LoadLocal(t *testing.T) {
	dir := t.TempDir()
	dp := filepath.Join(dir, "deaths.csv")
	pp := filepath.Join(dir, "population.csv")
	if err := os.WriteFile(dp, []byte(testDeaths), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pp, []byte(testPop), 0644); err != nil {
		t.Fatal(err)
	}
	l := Loader{DeathsURL: dp, PopulationURL: pp}
	tbl, err := l.Load(context.Background())
	if err != nil {
		t.Fatal("Load failed: ", err)
	}
	if tbl.Len() != NumAges {
		t.Errorf("Load returned %v records; want %v", tbl.Len(), NumAges)
	}
}

func TestLoader_FetchError(t *testing.T) {
	srv := newSourceServer(t)
	l := Loader{
		DeathsURL:     srv.URL + "/deaths.csv",
		PopulationURL: srv.URL + "/missing.csv",
		Client:        srv.Client(),
	}
	_, err := l.Load(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Load returned %v; want FetchError", err)
	}
	if want := srv.URL + "/missing.csv"; fe.URL != want {
		t.Errorf("FetchError has URL %q; want %q", fe.URL, want)
	}
}

func TestCache_Get(t *testing.T) {
	calls := 0
	fail := true
	want := NewTable(nil)
	c := NewCache(func(context.Context) (*Table, error) {
		calls++
		if fail {
			return nil, errors.New("intentional")
		}
		return want, nil
	})

	ctx := context.Background()
	if _, err := c.Get(ctx); err == nil {
		t.Error("Get unexpectedly succeeded")
	}
	fail = false
	for i := 0; i < 3; i++ {
		got, err := c.Get(ctx)
		if err != nil {
			t.Fatal("Get failed: ", err)
		}
		if got != want {
			t.Errorf("Get returned %p; want %p", got, want)
		}
	}
	if calls != 2 {
		t.Errorf("Loader called %v times; want 2", calls)
	}
}
