package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"ytharvest/internal/pipeline"
)

func renderDiscoverySummary(s pipeline.DiscoverySummary) string {
	rows := [][]string{
		{"Run", s.RunID},
		{"Band", fmt.Sprintf("%d-%d", s.Band.Low, s.Band.High)},
		{"Channels", fmt.Sprintf("%d / %d", s.Channels, s.Target)},
		{"Searches", strconv.Itoa(s.Attempts)},
		{"Failed searches", strconv.Itoa(s.FailedSearches)},
		{"Failed batches", strconv.Itoa(s.FailedBatches)},
		{"Rejected", formatCounts(s.Rejected)},
		{"Elapsed", formatElapsed(s.Elapsed)},
	}
	return renderTitledTable("Discovery", []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderEnrichmentSummary(s pipeline.EnrichmentSummary) string {
	rows := [][]string{
		{"Run", s.RunID},
		{"Channels", strconv.Itoa(s.Channels)},
		{"Videos selected", strconv.Itoa(s.Selected)},
		{"Rows with video", strconv.Itoa(s.Resolved)},
		{"Rows without video", formatCounts(s.Unresolved)},
		{"Output", s.Output},
		{"Elapsed", formatElapsed(s.Elapsed)},
	}
	return renderTitledTable("Enrichment", []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// formatCounts renders a reason histogram as "a=1, b=2" sorted by reason.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "0"
	}
	keys := make([]string, 0, len(counts))
	total := 0
	for k, v := range counts {
		keys = append(keys, k)
		total += v
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return fmt.Sprintf("%d (%s)", total, strings.Join(parts, ", "))
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
