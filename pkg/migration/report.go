package migration

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// IssueKind classifies a problem record.
type IssueKind string

const (
	IssueSkipped IssueKind = "skipped"
	IssueErrored IssueKind = "errored"
)

// Issue identifies one record that was not written, for manual follow-up.
type Issue struct {
	Entity   string
	SourceID string
	Kind     IssueKind
	Reason   string
}

// Tally counts outcomes for one entity type.
type Tally struct {
	Entity    string
	Attempted int
	Succeeded int
	Skipped   int
	Errored   int
	// FetchError is set when the source collection could not be read.
	FetchError string
}

// Report accumulates tallies in processing order.
type Report struct {
	Tallies []*Tally
	Issues  []Issue
	DryRun  bool
}

func (r *Report) tally(entity string) *Tally {
	t := &Tally{Entity: entity}
	r.Tallies = append(r.Tallies, t)
	return t
}

func (r *Report) addIssue(entity, sourceID string, kind IssueKind, reason string) {
	r.Issues = append(r.Issues, Issue{Entity: entity, SourceID: sourceID, Kind: kind, Reason: reason})
}

// Totals sums every tally.
func (r *Report) Totals() Tally {
	total := Tally{Entity: "TOTAL"}
	for _, t := range r.Tallies {
		total.Attempted += t.Attempted
		total.Succeeded += t.Succeeded
		total.Skipped += t.Skipped
		total.Errored += t.Errored
	}
	return total
}

// Failed reports whether any record errored or any collection failed to load.
func (r *Report) Failed() bool {
	for _, t := range r.Tallies {
		if t.Errored > 0 || t.FetchError != "" {
			return true
		}
	}
	return false
}

// WriteSummary renders the tally table followed by the problem records.
func (r *Report) WriteSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	heading := "ENTITY\tATTEMPTED\tSUCCEEDED\tSKIPPED\tERRORED\tNOTE"
	if r.DryRun {
		heading = "ENTITY\tATTEMPTED\tMAPPED\tSKIPPED\tERRORED\tNOTE"
	}
	fmt.Fprintln(tw, heading)

	for _, t := range r.Tallies {
		note := ""
		if t.FetchError != "" {
			note = "fetch failed: " + t.FetchError
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", t.Entity, t.Attempted, t.Succeeded, t.Skipped, t.Errored, note)
	}
	total := r.Totals()
	fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t\n", total.Entity, total.Attempted, total.Succeeded, total.Skipped, total.Errored)

	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Issues) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "\nProblem records (%d):\n", len(r.Issues)); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, issue := range r.Issues {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", issue.Kind, issue.Entity, issue.SourceID, issue.Reason)
	}
	return tw.Flush()
}
