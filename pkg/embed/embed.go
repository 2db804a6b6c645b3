// Package embed builds the rich-message payloads delivered to the
// diagnostic channel. Embeds are plain data handed to the framework's
// sender; this package knows nothing about the wire format.
package embed

import (
	"fmt"
	"time"
)

// Platform limits for embed payloads.
const (
	maxDescription = 4096
	maxFieldValue  = 1024
)

// Colors used by the diagnostic embeds.
const (
	ColorRed    = 0xE74C3C
	ColorOrange = 0xE67E22
)

// Field is a single name/value pair rendered inside an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich-message payload.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Timestamp   time.Time
}

// clamp truncates s to at most limit runes, marking the cut.
func clamp(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	const marker = "…(truncated)"
	return string(runes[:limit-len([]rune(marker))]) + marker
}

// LogEmbed builds the summary entry for an escalated command error.
func LogEmbed(description, actor, guild, command string) Embed {
	if guild == "" {
		guild = "(direct message)"
	}
	return Embed{
		Title:       "Command error!",
		Description: clamp(description, maxDescription),
		Color:       ColorRed,
		Fields: []Field{
			{Name: "Command", Value: clamp(command, maxFieldValue), Inline: true},
			{Name: "Actor", Value: clamp(actor, maxFieldValue), Inline: true},
			{Name: "Guild", Value: clamp(guild, maxFieldValue), Inline: true},
		},
		Timestamp: time.Now().UTC(),
	}
}

// TracebackEmbed builds the stack-trace entry that follows the summary.
func TracebackEmbed(traceback string) Embed {
	// Code fences count against the description limit
	body := clamp(traceback, maxDescription-len("```\n\n```"))
	return Embed{
		Title:       "Traceback",
		Description: fmt.Sprintf("```\n%s\n```", body),
		Color:       ColorOrange,
		Timestamp:   time.Now().UTC(),
	}
}
