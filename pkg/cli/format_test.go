package cli

import (
	"testing"
	"time"

	"github.com/akitenkrad/openai-tools/go/pkg/openai"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ms"},
		{999 * time.Millisecond, "999ms"},
		{time.Second, "1.0s"},
		{1500 * time.Millisecond, "1.5s"},
		{59 * time.Second, "59.0s"},
		{time.Minute, "1m0.0s"},
		{90 * time.Second, "1m30.0s"},
		{125500 * time.Millisecond, "2m5.5s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1610612736, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatBytes(tt.n); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
	if got := FormatBytesInt(2048); got != "2.00 KB" {
		t.Errorf("FormatBytesInt(2048) = %q", got)
	}
}

func TestFormatUsage(t *testing.T) {
	tests := []struct {
		name string
		u    *openai.Usage
		want string
	}{
		{"nil", nil, "no usage reported"},
		{"chat", &openai.Usage{PromptTokens: 12, CompletionTokens: 30, TotalTokens: 42}, "12 in, 30 out, 42 total tokens"},
		{"responses", &openai.Usage{InputTokens: 5, OutputTokens: 7}, "5 in, 7 out, 12 total tokens"},
	}
	for _, tt := range tests {
		if got := FormatUsage(tt.u); got != tt.want {
			t.Errorf("%s: FormatUsage = %q, want %q", tt.name, got, tt.want)
		}
	}
}
