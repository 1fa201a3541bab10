// Copyright 2020 Daniel Erat <dan@erat.org>.
// All rights reserved.

package charts

const (
	heatmapTmpl = `
set term pngcairo size {{.Width}},{{.Height}}
set output {{quote .Output}}
set title {{quote .Title}}

set xlabel 'Age Group'
set ylabel 'Country'
set xtics {{tics .Ages}} scale 0 rotate by 45 right
set ytics {{tics .Countries}} scale 0
set xrange [-0.5:{{len .Ages}}-0.5]
set yrange [-0.5:{{len .Countries}}-0.5]

set logscale cb
set cbrange [{{.MinRate}}:{{.MaxRate}}]
set cblabel 'Mortality rate per 100k'
set palette defined (0 '#f7fbff', 1 '#6baed6', 2 '#08306b')

plot {{quote .DataPath}} using 1:2:(0.5):(0.5):3 with boxxyerror fs solid 1.0 noborder lc palette notitle
`

	barsTmpl = `
set term pngcairo size {{.Width}},{{.Height}}
set output {{quote .Output}}
set title {{quote .Title}}

set datafile missing '?'
set style data histograms
set style histogram clustered gap 1
set style fill solid 1.0 noborder
set xtics scale 0 rotate by 45 right
set ylabel 'Mortality rate per 100k'
set yrange [0:*]
set grid ytics
set key outside top right autotitle columnheader

plot for [i=2:{{len .Countries}}+1] {{quote .DataPath}} using i:xtic(1)
`
)
