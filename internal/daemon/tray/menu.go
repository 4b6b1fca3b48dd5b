package tray

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/meowbar/meowbar/internal/models"
)

// maxLabelWidth keeps menu items from stretching the menu across the screen.
const maxLabelWidth = 60

func formatHeader(info models.StateInfo) string {
	return fmt.Sprintf("%s  %s", info.Emoji, info.DisplayName)
}

func formatTooltip(info models.StateInfo, doc *models.StatusDocument) string {
	if tool := toolName(doc); tool != "" {
		return fmt.Sprintf("MeowBar — %s (%s)", info.DisplayName, tool)
	}
	return "MeowBar — " + info.DisplayName
}

// formatSession shows the first 12 characters of the session id.
func formatSession(doc *models.StatusDocument) string {
	if doc == nil || doc.SessionID == nil || *doc.SessionID == "" {
		return ""
	}
	id := *doc.SessionID
	if len(id) > 12 {
		id = id[:12]
	}
	return fmt.Sprintf("Session: %s...", id)
}

func toolName(doc *models.StatusDocument) string {
	if doc == nil || doc.ToolName == nil {
		return ""
	}
	// Hooks write the literal "null" when no tool was involved.
	if t := *doc.ToolName; t != "null" {
		return t
	}
	return ""
}

func formatTool(doc *models.StatusDocument) string {
	if t := toolName(doc); t != "" {
		return truncate("Last tool: " + t)
	}
	return ""
}

func formatError(state models.CatState, doc *models.StatusDocument) string {
	if state != models.StateError || doc.Error() == "" {
		return ""
	}
	return truncate("⚠ " + doc.Error())
}

// formatStats returns the session counter lines, skipping absent counters.
func formatStats(doc *models.StatusDocument, now time.Time) []string {
	if doc == nil {
		return nil
	}
	var lines []string
	if doc.ToolCallCount != nil {
		lines = append(lines, fmt.Sprintf("Tool calls: %d", *doc.ToolCallCount))
	}
	if doc.PromptCount != nil {
		lines = append(lines, fmt.Sprintf("Prompts: %d", *doc.PromptCount))
	}
	if doc.ErrorCount != nil {
		lines = append(lines, fmt.Sprintf("Errors: %d", *doc.ErrorCount))
	}
	if elapsed, ok := doc.SessionDuration(now); ok {
		lines = append(lines, "Session time: "+formatDuration(elapsed))
	}
	return lines
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatEvent(e models.EventEntry) string {
	detail := e.Event
	if e.Detail != "" {
		detail = e.Event + ": " + e.Detail
	}
	return truncate(fmt.Sprintf("  %s %s", formatTime(e.Time), detail))
}

// formatTime renders an RFC3339 timestamp as local HH:MM:SS, or the last
// eight characters of anything else.
func formatTime(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local().Format("15:04:05")
	}
	if len(s) > 8 {
		return s[len(s)-8:]
	}
	return s
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return ansi.Truncate(s, maxLabelWidth, "…")
}
