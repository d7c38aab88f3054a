package guard

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Normal text",
			input:    "Hello World",
			expected: "hello world",
		},
		{
			name:     "Cyrillic Homoglyph (Sеcret)",
			input:    "Sеcret", // Cyrillic 'е' (U+0435)
			expected: "secret",
		},
		{
			name:     "Fullwidth (Ｈｅｌｌｏ)",
			input:    "Ｈｅｌｌｏ",
			expected: "hello",
		},
		{
			name:     "Control chars",
			input:    "Hello​World", // Zero width space
			expected: "helloworld",
		},
		{
			name:     "Newline becomes space",
			input:    "line one\nline two",
			expected: "line one line two",
		},
		{
			name:     "Pure ASCII - fast path",
			input:    "Hello World 123!@#",
			expected: "hello world 123!@#",
		},
		{
			name:     "Non-Latin words are preserved",
			input:    "Привет мир",
			expected: "привет мир",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeText(tt.input)
			if got != tt.expected {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitKeepingSpaces(t *testing.T) {
	parts := splitKeepingSpaces("a  bc d")
	want := []string{"a", "  ", "bc", " ", "d"}
	if len(parts) != len(want) {
		t.Fatalf("unexpected parts: %q", parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("part[%d] = %q, want %q", i, parts[i], want[i])
		}
	}
}
