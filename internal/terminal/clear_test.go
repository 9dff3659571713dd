// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package terminal

import (
	"bytes"
	"strings"
	"testing"
)

func TestLinesUsed(t *testing.T) {
	tests := []struct {
		name   string
		length int
		width  int
		want   int
	}{
		{name: "empty input", length: 0, width: 80, want: 2},
		{name: "one line", length: 40, width: 80, want: 2},
		{name: "exact width", length: 80, width: 80, want: 2},
		{name: "wrapped", length: 81, width: 80, want: 3},
		{name: "unknown width", length: 100, width: 0, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LinesUsed(tt.length, tt.width); got != tt.want {
				t.Errorf("LinesUsed(%d, %d) = %d, want %d", tt.length, tt.width, got, tt.want)
			}
		})
	}
}

func TestClearLines(t *testing.T) {
	var buf bytes.Buffer
	clearLines(&buf, 3)
	out := buf.String()
	if got := strings.Count(out, "\x1b[2K"); got != 3 {
		t.Errorf("cleared %d lines, want 3", got)
	}
	if got := strings.Count(out, "\x1b[1A"); got != 2 {
		t.Errorf("moved up %d times, want 2", got)
	}
}
