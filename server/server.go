// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package server serves the mortality dashboard over HTTP.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/derat/cancer/charts"
	"github.com/derat/cancer/rates"
	"github.com/derat/cancer/selection"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed page.html
var pageFS embed.FS

var pageTmpl = template.Must(template.ParseFS(pageFS, "page.html"))

// Server handles HTTP requests for the dashboard page and its JSON API.
type Server struct {
	cache *rates.Cache
	log   *zap.Logger
	mux   *http.ServeMux
}

// New returns a Server that reads the mortality table from cache.
func New(cache *rates.Cache, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cache: cache, log: log, mux: http.NewServeMux()}
	s.handle("GET /{$}", "index", s.serveIndex)
	s.handle("GET /api/options", "options", s.serveOptions)
	s.handle("GET /api/chart", "chart", s.serveChart)
	s.handle("GET /healthz", "healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	s.mux.Handle("GET /metrics", promhttp.Handler())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handle registers fn for pattern and records metrics under route.
func (s *Server) handle(pattern, route string, fn http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		fn(sw, r)
		code := strconv.Itoa(sw.code)
		metricRequestsCount.WithLabelValues(route, code).Inc()
		metricRequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.log.Debug("Handled request",
			zap.String("route", route),
			zap.String("query", r.URL.RawQuery),
			zap.Int("code", sw.code),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// statusWriter records the status code written to a ResponseWriter.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, struct{ Title string }{"Age-specific cancer mortality rates"}); err != nil {
		s.log.Error("Failed writing page", zap.Error(err))
	}
}

// optionsResponse describes the choices to offer in the page's controls.
type optionsResponse struct {
	Params    selection.Params `json:"params"`
	MinYear   int              `json:"minYear"`
	MaxYear   int              `json:"maxYear"`
	Countries []string         `json:"countries"`
	Cancers   []string         `json:"cancers"`
}

func (s *Server) serveOptions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.apply(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, optionsResponse{
		Params:    res.Params,
		MinYear:   res.MinYear,
		MaxYear:   res.MaxYear,
		Countries: res.AllCountries,
		Cancers:   res.Cancers,
	})
}

// chartResponse contains the selected rows and the chart spec drawn from them.
type chartResponse struct {
	*selection.Result
	Title string       `json:"title"`
	Spec  *charts.Spec `json:"spec"`
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request) {
	res, ok := s.apply(w, r)
	if !ok {
		return
	}
	title := charts.Title(res.Params.Cancer, res.Params.Sex, res.Params.Year)
	s.writeJSON(w, chartResponse{
		Result: res,
		Title:  title,
		Spec:   charts.New(res.Rows, title),
	})
}

// apply loads the table and applies the selection described by r's query.
// If false is returned, an error has already been written to w.
func (s *Server) apply(w http.ResponseWriter, r *http.Request) (*selection.Result, bool) {
	t, err := s.cache.Get(r.Context())
	if err != nil {
		s.log.Error("Failed loading table", zap.Error(err))
		http.Error(w, "data unavailable", http.StatusServiceUnavailable)
		return nil, false
	}

	p, err := parseParams(r.URL.Query(), t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	res, err := selection.Apply(t, p)
	switch {
	case errors.Is(err, selection.ErrYearOutOfRange), errors.Is(err, selection.ErrInvalidSex):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	case err != nil:
		s.log.Error("Failed applying selection", zap.Stringer("params", p), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return res, true
}

// parseParams returns the selection described by q, using defaults for missing values.
// Countries are passed as repeated "country" parameters; if none are present the default
// countries are used.
func parseParams(q url.Values, t *rates.Table) (selection.Params, error) {
	p := selection.Defaults(t)
	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return p, errors.New("bad year " + strconv.Quote(s))
		}
		p.Year = y
	}
	if s := q.Get("sex"); s != "" {
		p.Sex = rates.Sex(s)
	}
	if cs, ok := q["country"]; ok {
		p.Countries = cs
	}
	if s := q.Get("cancer"); s != "" {
		p.Cancer = s
	}
	return p, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Failed writing JSON", zap.Error(err))
	}
}
