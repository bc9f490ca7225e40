package utils

import (
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{
			name:   "Plain dollar price",
			input:  "$449.99",
			want:   449.99,
			wantOK: true,
		},
		{
			name:   "Thousands separator",
			input:  "$1,299.99",
			want:   1299.99,
			wantOK: true,
		},
		{
			name:   "Bare number",
			input:  "130",
			want:   130,
			wantOK: true,
		},
		{
			name:   "Price with prose",
			input:  "was $89.50 (sale)",
			want:   89.50,
			wantOK: true,
		},
		{
			name:   "Empty string",
			input:  "",
			wantOK: false,
		},
		{
			name:   "Placeholder N/A",
			input:  "N/A",
			wantOK: false,
		},
		{
			name:   "No digits",
			input:  "call for price",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParsePrice(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
