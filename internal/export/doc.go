// Package export renders run results as standalone SVG charts.
package export
