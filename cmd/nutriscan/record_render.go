package main

import (
	"fmt"
	"io"
	"strconv"

	"nutriscan/internal/nutrition"
)

// printRecord writes a canonical food record in the scan result layout.
func printRecord(w io.Writer, record nutrition.Record) {
	fmt.Fprintf(w, "%s  [%s]\n", record.Name, colorizeStatus(string(record.Status)))
	if record.Subtitle != "" {
		fmt.Fprintln(w, record.Subtitle)
	}
	fmt.Fprintln(w, record.Message)

	rows := [][]string{
		{"Calories", formatNumber(record.Calories)},
		{"Protein", formatNumber(record.Protein)},
		{"Sugar", formatNumber(record.Sugar)},
		{"Fiber", formatNumber(record.Fiber)},
	}
	if record.DailySugarPercent > 0 {
		rows = append(rows, []string{"Daily sugar", formatNumber(record.DailySugarPercent) + "%"})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Field", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))

	if len(record.Risks) > 0 {
		fmt.Fprintln(w, "Risks:")
		for _, risk := range record.Risks {
			fmt.Fprintf(w, "  - %s\n", risk)
		}
	}
	if len(record.Swaps) > 0 {
		fmt.Fprintln(w, "Swaps:")
		for _, swap := range record.Swaps {
			fmt.Fprintf(w, "  - %s\n", swap)
		}
	}
	if record.AIAnalysis != "" {
		fmt.Fprintln(w, record.AIAnalysis)
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
