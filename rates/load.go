// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package rates

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDeathsURL points at the WHO cancer deaths extract (ICD-10 causes).
	DefaultDeathsURL = "https://raw.githubusercontent.com/hms-dbmi/bmi706-2022/main/cancer_data/cancer_ICD10.csv"
	// DefaultPopulationURL points at the matching population counts.
	DefaultPopulationURL = "https://raw.githubusercontent.com/hms-dbmi/bmi706-2022/main/cancer_data/population.csv"
)

// FetchError is returned when a source file could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetching %v: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// Loader fetches the source files and builds a Table from them.
type Loader struct {
	DeathsURL     string       // http(s) URL or local path
	PopulationURL string       // http(s) URL or local path
	Client        *http.Client // http.DefaultClient if nil
	Log           *zap.Logger  // no logging if nil
}

// Load fetches both sources and runs Build on them.
// There is no partial result: if either source fails, an error is returned.
func (l *Loader) Load(ctx context.Context) (*Table, error) {
	log := l.Log
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	var deaths, pop []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		deaths, err = l.fetch(gctx, l.DeathsURL)
		return err
	})
	g.Go(func() (err error) {
		pop, err = l.fetch(gctx, l.PopulationURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("Fetched sources",
		zap.Int("deaths_bytes", len(deaths)),
		zap.Int("population_bytes", len(pop)),
		zap.Duration("elapsed", time.Since(start)))

	t, st, err := Build(bytes.NewReader(deaths), bytes.NewReader(pop))
	if err != nil {
		return nil, err
	}
	log.Info("Built mortality table",
		zap.Int("death_rows", st.DeathRows),
		zap.Int("population_rows", st.PopulationRows),
		zap.Int("joined", st.Joined),
		zap.Int("unmatched", st.Unmatched),
		zap.Int("backfilled", st.Backfilled),
		zap.Int("dropped", st.Dropped),
		zap.Int("records", st.Records),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// fetch reads the source at u, which is either an http(s) URL or a local path.
func (l *Loader) fetch(ctx context.Context, u string) ([]byte, error) {
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		b, err := os.ReadFile(u)
		if err != nil {
			return nil, &FetchError{u, err}
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{u, err}
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{u, err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{u, fmt.Errorf("server returned %v", resp.Status)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{u, err}
	}
	return b, nil
}

// Cache lazily loads a Table and then returns it for the remainder of the process.
// The cached table is never invalidated. Failed loads are not cached.
type Cache struct {
	load func(context.Context) (*Table, error)

	mu sync.Mutex
	t  *Table
}

// NewCache returns a Cache that calls load the first time Get is called.
func NewCache(load func(context.Context) (*Table, error)) *Cache {
	return &Cache{load: load}
}

// Get returns the cached table, loading it first if needed.
// Concurrent callers wait for a single load to finish.
func (c *Cache) Get(ctx context.Context) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.t != nil {
		return c.t, nil
	}
	t, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.t = t
	return t, nil
}
