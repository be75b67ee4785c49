package main

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipline/internal/job"
)

var titleCaser = cases.Title(language.Und)

// stateLabel renders a job state for table output, e.g. "Running".
func stateLabel(state job.State) string {
	return titleCaser.String(string(state))
}

func formatPercent(status job.Status) string {
	switch status.State {
	case job.StateSucceeded:
		return "100%"
	case job.StateRunning:
		return fmt.Sprintf("%.0f%%", status.Percent*100)
	default:
		return "-"
	}
}

func formatStage(status job.Status) string {
	if status.Stage == "" {
		return "-"
	}
	return string(status.Stage)
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func describeStatus(status job.Status) string {
	var b strings.Builder
	b.WriteString(stateLabel(status.State))
	if status.State == job.StateRunning {
		fmt.Fprintf(&b, " %s (%s)", formatStage(status), formatPercent(status))
	}
	if status.State == job.StateFailed && status.Reason != "" {
		fmt.Fprintf(&b, ": %s", status.Reason)
	}
	if status.State == job.StateSucceeded && status.OutputPath != "" {
		fmt.Fprintf(&b, ": %s", status.OutputPath)
	}
	return b.String()
}
