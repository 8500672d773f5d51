package cache

import (
	"strings"
	"testing"
)

func TestCompressValueRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "plain text",
			input: "A melancholic analysis of a rainy afternoon",
		},
		{
			name:  "empty string",
			input: "",
		},
		{
			name:  "json payload",
			input: `{"analysis":"upbeat, high energy","metadata":{"tokens_used":412}}`,
		},
		{
			name:  "unicode",
			input: "émotions / 音楽 / موسيقى",
		},
		{
			name:  "long repetitive payload",
			input: strings.Repeat("mood: nostalgic, tempo: slow. ", 500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := compressValue(tt.input)
			if err != nil {
				t.Fatalf("compressValue failed: %v", err)
			}

			decompressed, err := decompressValue(compressed)
			if err != nil {
				t.Fatalf("decompressValue failed: %v", err)
			}

			if decompressed != tt.input {
				t.Errorf("Round trip mismatch: got %q, expected %q", decompressed, tt.input)
			}
		})
	}
}

func TestCompressValueShrinksRepetitiveInput(t *testing.T) {
	input := strings.Repeat("the same analysis text over and over ", 200)
	compressed, err := compressValue(input)
	if err != nil {
		t.Fatalf("compressValue failed: %v", err)
	}
	if len(compressed) >= len(input) {
		t.Errorf("Expected compression to shrink repetitive input: %d >= %d", len(compressed), len(input))
	}
}

func TestDecompressValueInvalidInput(t *testing.T) {
	if _, err := decompressValue("not-base64!!!"); err == nil {
		t.Error("Expected error for invalid base64 input")
	}

	// Valid base64 but not gzip
	if _, err := decompressValue("aGVsbG8gd29ybGQ="); err == nil {
		t.Error("Expected error for non-gzip input")
	}
}
