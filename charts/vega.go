// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

// Package charts describes the heatmap and bar chart views of selected mortality rates.
package charts

import (
	"fmt"

	"github.com/derat/cancer/rates"
)

const (
	schema    = "https://vega.github.io/schema/vega-lite/v5.json"
	brushName = "brush"
	rateTitle = "Mortality rate per 100k"

	// Bounds of the heatmap's logarithmic color scale. Rates outside are clamped.
	minColorRate = 0.01
	maxColorRate = 1000
)

// Title returns the title shared by both views, e.g.
// "Malignant neoplasm of stomach mortality rates for males in 1999".
func Title(cancer string, sex rates.Sex, year int) string {
	return fmt.Sprintf("%s mortality rates for %s in %d", cancer, sex.Label(), year)
}

// Spec is a Vega-Lite specification.
type Spec struct {
	Schema  string `json:"$schema"`
	Data    Data   `json:"data"`
	VConcat []View `json:"vconcat"`
}

type Data struct {
	Values []rates.Record `json:"values"`
}

// View is a single chart within a Spec.
type View struct {
	Title     string      `json:"title"`
	Width     string      `json:"width,omitempty"`
	Mark      string      `json:"mark"`
	Params    []Param     `json:"params,omitempty"`
	Transform []Transform `json:"transform,omitempty"`
	Encoding  Encoding    `json:"encoding"`
}

type Param struct {
	Name   string `json:"name"`
	Select Select `json:"select"`
}

type Select struct {
	Type      string   `json:"type"`
	Encodings []string `json:"encodings"`
}

type Transform struct {
	Filter Filter `json:"filter"`
}

type Filter struct {
	Param string `json:"param"`
}

type Encoding struct {
	X       *Channel  `json:"x,omitempty"`
	Y       *Channel  `json:"y,omitempty"`
	Color   *Channel  `json:"color,omitempty"`
	Tooltip []Channel `json:"tooltip,omitempty"`
}

// Channel maps a data field to a visual property.
type Channel struct {
	Field string   `json:"field"`
	Type  string   `json:"type"`
	Sort  []string `json:"sort,omitempty"`
	Title string   `json:"title,omitempty"`
	Scale *Scale   `json:"scale,omitempty"`
}

type Scale struct {
	Type   string    `json:"type"`
	Domain []float64 `json:"domain"`
	Clamp  bool      `json:"clamp"`
}

// New returns a spec that shows rows as a heatmap of rates by country and age,
// above a bar chart that only includes the ages selected by brushing the heatmap.
func New(rows []rates.Record, title string) *Spec {
	if rows == nil {
		rows = []rates.Record{}
	}
	ages := rates.AgeNames()
	return &Spec{
		Schema: schema,
		Data:   Data{Values: rows},
		VConcat: []View{
			{
				Title: title,
				Width: "container",
				Mark:  "rect",
				Params: []Param{{
					Name:   brushName,
					Select: Select{Type: "interval", Encodings: []string{"x"}},
				}},
				Encoding: Encoding{
					X: &Channel{Field: "Age", Type: "nominal", Sort: ages, Title: "Age Group"},
					Y: &Channel{Field: "Country", Type: "nominal", Title: "Country"},
					Color: &Channel{
						Field: "Rate",
						Type:  "quantitative",
						Title: rateTitle,
						Scale: &Scale{Type: "log", Domain: []float64{minColorRate, maxColorRate}, Clamp: true},
					},
					Tooltip: []Channel{
						{Field: "Country", Type: "nominal"},
						{Field: "Age", Type: "nominal"},
						{Field: "Rate", Type: "quantitative"},
					},
				},
			},
			{
				Title:     title,
				Width:     "container",
				Mark:      "bar",
				Transform: []Transform{{Filter: Filter{Param: brushName}}},
				Encoding: Encoding{
					X:       &Channel{Field: "Age", Type: "nominal", Sort: ages},
					Y:       &Channel{Field: "Rate", Type: "quantitative", Title: rateTitle},
					Color:   &Channel{Field: "Country", Type: "nominal"},
					Tooltip: []Channel{{Field: "Rate", Type: "quantitative"}},
				},
			},
		},
	}
}
