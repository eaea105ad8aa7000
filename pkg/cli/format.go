package cli

import (
	"fmt"
	"time"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

// FormatDuration renders d as "850ms", "2.5s" or "1m5.0s".
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	secs := float64(ms) / 1000
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs -= float64(mins * 60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(n int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/GB)
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/MB)
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/KB)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatBytesInt is FormatBytes for an int length.
func FormatBytesInt(n int) string {
	return FormatBytes(int64(n))
}

// FormatUsage summarises token usage from either the chat (prompt and
// completion) or the responses (input and output) naming.
func FormatUsage(u *openai.Usage) string {
	if u == nil {
		return "no usage reported"
	}
	in, out := u.PromptTokens, u.CompletionTokens
	if in == 0 && out == 0 {
		in, out = u.InputTokens, u.OutputTokens
	}
	total := u.TotalTokens
	if total == 0 {
		total = in + out
	}
	return fmt.Sprintf("%d in, %d out, %d total tokens", in, out, total)
}
