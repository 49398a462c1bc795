package utils

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{5, "$5.00"},
		{-3.5, "-$3.50"},
		{0, "$0.00"},
		{10000.125, "$10000.12"},
	}
	for _, tt := range tests {
		if got := FormatUSD(tt.amount); got != tt.expected {
			t.Errorf("FormatUSD(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{20, "+20.00%"},
		{-5.5, "-5.50%"},
		{0, "0.00%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.value); got != tt.expected {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

func TestFormatStrike(t *testing.T) {
	tests := []struct {
		strike   float64
		expected string
	}{
		{5950, "5950"},
		{5952.5, "5952.50"},
	}
	for _, tt := range tests {
		if got := FormatStrike(tt.strike); got != tt.expected {
			t.Errorf("FormatStrike(%v) = %q, want %q", tt.strike, got, tt.expected)
		}
	}
}
