package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/volleyhq/volley/internal/batch"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func FormatElapsed(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func FormatTimestamp(t time.Time) string {
	return t.Local().Format("15:04:05.000")
}

func TruncateString(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// PrintProgress writes one in-flight progress line.
func PrintProgress(sent, errors, total int) {
	if errors > 0 {
		fmt.Printf("%d/%d sent, %s\n", sent, total, red(fmt.Sprintf("%d failed", errors)))
		return
	}
	fmt.Printf("%d/%d sent\n", sent, total)
}

// PrintSummary renders the final batch outcome, including one line per
// failed message.
func PrintSummary(sum *batch.Summary, elapsed time.Duration) {
	fmt.Println()
	glyph := green("✓")
	if sum.Errors > 0 {
		glyph = red("✗")
	}
	fmt.Printf("%s %d sent, %d failed (%d total) in %s\n",
		glyph, sum.Sent, sum.Errors, sum.Total, FormatElapsed(elapsed))

	for _, r := range sum.Results {
		if r.Failed() {
			fmt.Printf("  %s message %d: %s\n", red("✗"), r.Index, r.Error)
		}
	}

	if !sum.Complete() {
		outstanding := sum.Total - sum.Sent - sum.Errors
		fmt.Printf("%s %d messages still in flight when the completion wait timed out\n",
			yellow("!"), outstanding)
	}
}

// PrintMessage renders one received message for the subscribe tail.
func PrintMessage(channel, payload string) {
	fmt.Printf("%s  %s  %s\n",
		FormatTimestamp(time.Now()),
		cyan(channel),
		payload)
}
