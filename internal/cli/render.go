package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"casetriage/internal/cases/models"
	"casetriage/internal/triage"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	urgentColor   = color.New(color.FgYellow)
	normalColor   = color.New(color.FgGreen)
	resolvedColor = color.New(color.FgHiBlack)
	unscoredColor = color.New(color.FgMagenta)
)

func classLabel(e triage.Entry) string {
	if !e.Case.Status.IsActive() {
		return resolvedColor.Sprint("RESOLVED")
	}
	switch e.Score.Classification {
	case triage.Critical:
		return criticalColor.Sprint("CRITICAL")
	case triage.Urgent:
		return urgentColor.Sprint("URGENT")
	default:
		return normalColor.Sprint("NORMAL")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderView(w io.Writer, view *triage.View) error {
	level := view.Level
	if level == "" {
		level = "no matches"
	}
	scope := view.Scope
	if scope == "" {
		scope = "(unscoped)"
	}
	fmt.Fprintf(w, "Scope: %s [%s]  generated %s\n", scope, level, view.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "%s %d  %s %d  %s %d  resolved %d  unscored %d\n",
		criticalColor.Sprint("critical"), view.Summary.Critical,
		urgentColor.Sprint("urgent"), view.Summary.Urgent,
		normalColor.Sprint("normal"), view.Summary.Normal,
		view.Summary.Resolved, view.Summary.Unscored,
	)

	if len(view.TopAlerts) > 0 {
		fmt.Fprintln(w, "\nTop alerts:")
		for _, e := range view.TopAlerts {
			fmt.Fprintf(w, "  %s %s (%.0f)\n", classLabel(e), e.Case.ID, e.Score.Value)
		}
	}

	fmt.Fprintln(w)
	if len(view.Entries) == 0 {
		fmt.Fprintln(w, "No cases.")
	} else if err := renderEntries(w, view.Entries, view.GeneratedAt); err != nil {
		return err
	}

	for _, u := range view.Unscored {
		fmt.Fprintf(w, "%s %s: %s\n", unscoredColor.Sprint("UNSCORED"), u.CaseID, u.Reason)
	}
	return nil
}

func renderEntries(w io.Writer, entries []triage.Entry, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tSCORE\tCASE\tAGE\tREPORTED\tJURISDICTION\tLOCATION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%.0f\t%s\t%s\t%s ago\t%s\t%s\n",
			classLabel(e),
			e.Score.Value,
			e.Case.ID,
			ageLabel(e.Case.SubjectAge),
			since(now, e.Case.ReportedAt),
			e.Case.Jurisdiction,
			e.Case.LastKnownLocation,
		)
	}
	return tw.Flush()
}

func renderResult(w io.Writer, r *triage.Result) {
	fmt.Fprintf(w, "%s %s  score %.0f\n", classLabel(r.Entry), r.Case.ID, r.Score.Value)
	fmt.Fprintf(w, "  age       %5.0f  (%s)\n", r.Score.Breakdown.Age, ageLabel(r.Case.SubjectAge))
	fmt.Fprintf(w, "  elapsed   %5.0f  (reported %s ago)\n", r.Score.Breakdown.Elapsed, since(r.ScoredAt, r.Case.ReportedAt))
	fmt.Fprintf(w, "  location  %5.0f  (%s)\n", r.Score.Breakdown.Location, orDash(r.Case.LastKnownLocation))
	fmt.Fprintf(w, "  status %s, jurisdiction %s\n", r.Case.Status, orDash(r.Case.Jurisdiction))
}

func renderCase(w io.Writer, c *models.Case) {
	fmt.Fprintf(w, "%s  status %s  jurisdiction %s  reported %s\n",
		c.ID, c.Status, orDash(c.Jurisdiction), c.ReportedAt.Format(time.RFC3339))
}

func renderHistory(w io.Writer, id models.CaseID, changes []models.StatusChange) error {
	if len(changes) == 0 {
		fmt.Fprintf(w, "%s has no status changes.\n", id)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHANGED AT\tFROM\tTO")
	for _, c := range changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ChangedAt.Format(time.RFC3339), c.From, c.To)
	}
	return tw.Flush()
}

func ageLabel(age *int) string {
	if age == nil {
		return "?"
	}
	return strconv.Itoa(*age)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// since renders the report age coarsely: minutes, hours or days.
func since(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(max(d, 0).Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
