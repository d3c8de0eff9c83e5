package parser

import "testing"

func TestSkipInert(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
		want  int
	}{
		{"not inert", "SELECT 1", 0, 0},
		{"string literal", "'abc' rest", 0, 5},
		{"string with escape", "'it''s' rest", 0, 7},
		{"unterminated string", "'abc", 0, 4},
		{"quoted identifier", `"col name" rest`, 0, 10},
		{"quoted identifier with escape", `"a""b" rest`, 0, 6},
		{"line comment", "-- hi\nSELECT", 0, 5},
		{"line comment at end", "-- hi", 0, 5},
		{"block comment", "/* x */ rest", 0, 7},
		{"unterminated block comment", "/* x", 0, 4},
		{"single dash is not a comment", "a - b", 2, 2},
		{"slash alone is not a comment", "a / b", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := skipInert(tt.input, tt.pos)
			if got != tt.want {
				t.Errorf("skipInert(%q, %d) = %d, want %d", tt.input, tt.pos, got, tt.want)
			}
		})
	}
}
