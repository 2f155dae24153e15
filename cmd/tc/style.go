package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zsiec/timecode/internal/client"
	"github.com/zsiec/timecode/pkg/timecode"
)

var (
	primary = lipgloss.Color("#FF6B35")
	success = lipgloss.Color("#4CAF50")
	warning = lipgloss.Color("#FFB74D")
	failure = lipgloss.Color("#F44336")
	muted   = lipgloss.Color("#90A4AE")

	labelStyle   = lipgloss.NewStyle().Foreground(primary).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	validStyle   = lipgloss.NewStyle().Foreground(success).Bold(true)
	invalidStyle = lipgloss.NewStyle().Foreground(failure).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Foreground(failure)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

func renderError(err error) string {
	msg := err.Error()
	if apiErr, ok := err.(*client.APIError); ok && apiErr.Code != "" {
		msg = fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Code)
	}
	return errorStyle.Render("error: ") + msg
}

func renderAdvisory(a timecode.Advisory) string {
	return warnStyle.Render("advisory: ") + a.Message + mutedStyle.Render(" ["+string(a.Code)+"]")
}

func renderLabel(label string, format timecode.Format) string {
	if format == "" {
		return labelStyle.Render(label)
	}
	return labelStyle.Render(label) + mutedStyle.Render(" "+string(format))
}

func renderReport(res timecode.ValidationResult) string {
	var b strings.Builder
	if res.Valid {
		b.WriteString(validStyle.Render("valid"))
	} else {
		b.WriteString(invalidStyle.Render("invalid"))
	}
	if res.Format != "" {
		b.WriteString(mutedStyle.Render(" (" + string(res.Format) + ")"))
	}
	b.WriteString("\n")

	if c := res.Components; c != nil {
		fmt.Fprintf(&b, "  hours=%d minutes=%d seconds=%d frames=%d\n", c.Hours, c.Minutes, c.Seconds, c.Frames)
	}
	for _, e := range res.Errors {
		b.WriteString("  " + errorStyle.Render("error: ") + e + "\n")
	}
	for _, w := range res.Warnings {
		b.WriteString("  " + warnStyle.Render("warning: ") + w + "\n")
	}
	return b.String()
}

func renderRates(rates []timecode.RateInfo) string {
	cols := []lipgloss.Style{
		lipgloss.NewStyle().Width(10),
		lipgloss.NewStyle().Width(14),
		lipgloss.NewStyle().Width(9),
		lipgloss.NewStyle().Width(12),
		lipgloss.NewStyle(),
	}
	row := func(cells ...string) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = cols[i].Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, out...)
	}

	lines := []string{headerStyle.Render(row("RATE", "RATIONAL", "NOMINAL", "DROP FRAME", "STANDARD"))}
	for _, r := range rates {
		drop := "no"
		if r.DropFrame {
			drop = fmt.Sprintf("yes (%d)", r.DropQuota)
		}
		lines = append(lines, row(r.Name, r.Rational.String(), fmt.Sprintf("%d", r.Nominal), drop, r.Standard))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}
