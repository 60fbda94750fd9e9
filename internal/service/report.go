package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/timmy/docclass/internal/domain"
)

var banner = strings.Repeat("=", 60)

// WriteRunReport renders the human-readable summary of a classification run.
func WriteRunReport(w io.Writer, stats *domain.RunStats) error {
	var b strings.Builder

	writeHeading(&b, "Document Classification")
	if stats.DryRun {
		b.WriteString("Mode: DRY RUN\n")
	} else {
		b.WriteString("Mode: LIVE UPDATE\n")
	}
	if stats.Scope == domain.ScopeAll {
		b.WriteString("Scope: All documents\n")
	} else {
		b.WriteString("Scope: Unclassified only\n")
	}
	fmt.Fprintf(&b, "Run ID: %s\n", stats.RunID)

	switch stats.Status {
	case domain.RunStatusCountFailed:
		fmt.Fprintf(&b, "\nError: failed to count documents: %s\n", stats.Error)
		_, err := io.WriteString(w, b.String())
		return err
	case domain.RunStatusNothingToDo:
		b.WriteString("\nNo documents to classify!\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\nDocuments to process: %d\n", stats.TotalCount)
	if len(stats.Samples) > 0 {
		b.WriteString("\n")
		for _, s := range stats.Samples {
			fmt.Fprintf(&b, "  [%s] %s...\n", s.Category, s.Name)
		}
	}

	b.WriteString("\n")
	writeHeading(&b, "Classification Results")
	fmt.Fprintf(&b, "Total processed: %d\n", stats.Processed)
	if !stats.DryRun {
		fmt.Fprintf(&b, "Successfully updated: %d\n", stats.Succeeded)
		fmt.Fprintf(&b, "Failed: %d\n", stats.Failed)
	}
	if stats.Status == domain.RunStatusCanceled {
		b.WriteString("Status: canceled before all pages were read\n")
	} else if stats.Processed < stats.TotalCount {
		fmt.Fprintf(&b, "Warning: %d of %d documents were not read\n", stats.TotalCount-stats.Processed, stats.TotalCount)
	}
	if d := stats.Duration(); d > 0 {
		fmt.Fprintf(&b, "Duration: %s\n", d.Round(time.Millisecond))
	}

	b.WriteString("\nBy Category:\n")
	writeCounts(&b, stats.ByCategory, "(unclassified)", "")
	b.WriteString("\nBy Access Level:\n")
	writeCounts(&b, stats.ByAccessLevel, "(none)", "")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteStatsReport renders the facet breakdown of the index.
func WriteStatsReport(w io.Writer, stats *domain.IndexStats) error {
	var b strings.Builder

	writeHeading(&b, "Current Classification Statistics")
	fmt.Fprintf(&b, "\nTotal documents: %d\n", stats.TotalDocuments)

	b.WriteString("\nBy Category:\n")
	writeCounts(&b, stats.ByCategory, "(unclassified)", "No classification data yet")
	b.WriteString("\nBy Access Level:\n")
	writeCounts(&b, stats.ByAccessLevel, "(none)", "No access level data yet")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeading(b *strings.Builder, title string) {
	b.WriteString(banner + "\n")
	b.WriteString(title + "\n")
	b.WriteString(banner + "\n")
}

// writeCounts prints a table in descending count order. emptyKey labels the
// blank key; emptyTable is printed when the table has no entries.
func writeCounts(b *strings.Builder, counts map[string]int, emptyKey, emptyTable string) {
	entries := domain.SortedCounts(counts)
	if len(entries) == 0 && emptyTable != "" {
		fmt.Fprintf(b, "  %s\n", emptyTable)
		return
	}
	for _, e := range entries {
		key := e.Key
		if key == "" {
			key = emptyKey
		}
		fmt.Fprintf(b, "  %s: %d\n", key, e.Count)
	}
}
