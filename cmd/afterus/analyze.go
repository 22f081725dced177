package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/afterus/afterus-backend/internal/analysis"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	themeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	memoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// analyzeOutput is the --json shape
type analyzeOutput struct {
	Lines    int                        `json:"lines"`
	Parsed   int                        `json:"parsed"`
	Skipped  int                        `json:"skipped"`
	Insights *analysis.InsightReport    `json:"insights"`
	Memories []analysis.MemoryCandidate `json:"memories"`
}

func newAnalyzeCmd() *cobra.Command {
	var user string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <export.txt>",
		Short: "Parse a WhatsApp export and print insights without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read export: %w", err)
			}

			messages, stats := analysis.ParseExportWithStats(string(bytes.TrimPrefix(raw, utf8BOM)), user)
			if len(messages) == 0 {
				return analysis.ErrNoMessagesFound
			}

			report, err := analysis.DeriveInsights(messages)
			if err != nil {
				return err
			}
			memories, err := analysis.ExtractMemories(messages)
			if err != nil {
				return err
			}

			out := analyzeOutput{
				Lines:    stats.Lines,
				Parsed:   stats.Parsed,
				Skipped:  stats.Unmatched + len(stats.Malformed),
				Insights: report,
				Memories: memories,
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			renderAnalysis(cmd.OutOrStdout(), args[0], out, stats.Malformed)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "Your sender name in the export")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a styled report")
	return cmd
}

func renderAnalysis(w io.Writer, filename string, out analyzeOutput, malformed []*analysis.MalformedTimestampError) {
	r := out.Insights
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-22s", label)), value)
	}

	fmt.Fprintln(w, headerStyle.Render("Relationship insights: "+filename))
	row("Messages", fmt.Sprintf("%d parsed, %d skipped", out.Parsed, out.Skipped))
	row("Duration", r.RelationshipDuration)
	row("Messages per day", r.CommunicationPatterns.MessagesPerDay)
	row("You / them", r.CommunicationPatterns.UserPercentage+" / "+r.CommunicationPatterns.PartnerPercentage)
	row("Tone (+/-/=)", fmt.Sprintf("%.0f%% / %.0f%% / %.0f%%",
		r.EmotionalTone.Positive*100, r.EmotionalTone.Negative*100, r.EmotionalTone.Neutral*100))
	row("Relationship health", scoreStyle.Render(fmt.Sprintf("%.1f / 100", r.HealthScore)))

	if len(r.KeyThemes) > 0 {
		themes := make([]string, len(r.KeyThemes))
		for i, t := range r.KeyThemes {
			themes[i] = string(t)
		}
		row("Key themes", themeStyle.Render(strings.Join(themes, ", ")))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Recommendations"))
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  • %s\n", rec)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Memories (%d)", len(out.Memories))))
	for _, m := range out.Memories {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(m.Date.Format("2006-01-02")), memoryStyle.Render(m.Title))
	}

	for _, e := range malformed {
		fmt.Fprintln(w, warnStyle.Render("  skipped "+e.Error()))
	}
}
