// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import (
	"fmt"
	"io"
	"path/filepath"
)

// Summary counts outcomes by kind.
type Summary struct {
	Renamed int
	Skipped int
	Failed  int
}

// Total returns the number of notebooks processed.
func (s Summary) Total() int {
	return s.Renamed + s.Skipped + s.Failed
}

// HasFailures reports whether any notebook failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Kind {
		case Renamed:
			s.Renamed++
		case SkippedCurrent, SkippedNoChange:
			s.Skipped++
		case Failed:
			s.Failed++
		}
	}
	return s
}

// Message describes an outcome in one line. Dry-run messages differ from
// real-run messages only in the "Would rename" qualifier.
func (o Outcome) Message() string {
	oldName := filepath.Base(o.OldPath)
	switch o.Kind {
	case Renamed:
		action := "Renamed"
		if o.DryRun {
			action = "Would rename"
		}
		detail := "(added version)"
		if o.FromVersion != "" {
			detail = fmt.Sprintf("(from v%s)", o.FromVersion)
		}
		return fmt.Sprintf("%s: %s -> %s %s", action, oldName, filepath.Base(o.NewPath), detail)
	case SkippedCurrent:
		return fmt.Sprintf("Already at version %s: %s", o.Version, oldName)
	case SkippedNoChange:
		return fmt.Sprintf("No change needed: %s", oldName)
	case Failed:
		return fmt.Sprintf("Error: %s: %v", oldName, o.Err)
	}
	return oldName
}

// PrintResults writes a summary followed by one line per outcome, in
// outcome order.
func PrintResults(w io.Writer, outcomes []Outcome) {
	s := Summarize(outcomes)
	verb := "renamed"
	if len(outcomes) > 0 && outcomes[0].DryRun {
		verb = "to rename"
	}

	fmt.Fprintln(w, "\nVersioning complete:")
	fmt.Fprintf(w, "  Files processed: %d\n", s.Total())
	fmt.Fprintf(w, "  Files %s: %d\n", verb, s.Renamed)
	fmt.Fprintf(w, "  Files skipped: %d\n", s.Skipped)
	if s.Failed > 0 {
		fmt.Fprintf(w, "  Files failed: %d\n", s.Failed)
	}
	fmt.Fprintln(w)

	for _, o := range outcomes {
		fmt.Fprintf(w, "%s %s\n", marker(o.Kind), o.Message())
	}
}

func marker(k Kind) string {
	switch k {
	case Renamed:
		return "✓"
	case Failed:
		return "✗"
	}
	return "○"
}
