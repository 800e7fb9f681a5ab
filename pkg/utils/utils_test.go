package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"", 5, ""},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
	}

	for _, tt := range tests {
		result := TruncateString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("TruncateString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestAddCommas(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"1234.56", "1,234.56"},
		{"-1234", "-1,234"},
		{"", ""},
	}

	for _, tt := range tests {
		result := AddCommas(tt.input)
		if result != tt.expected {
			t.Errorf("AddCommas(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		input    string
		decimals int
		expected string
	}{
		{"1234.5678", 2, "1,234.57"},
		{"1234.5", 2, "1,234.50"},
		{"0", 2, "0.00"},
		{"0.12345678", 8, "0.12345678"},
	}

	for _, tt := range tests {
		result := FormatDecimal(decimal.RequireFromString(tt.input), tt.decimals)
		if result != tt.expected {
			t.Errorf("FormatDecimal(%s, %d) = %q; want %q", tt.input, tt.decimals, result, tt.expected)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		input    string
		currency string
		expected string
	}{
		{"1234.5", "EUR", "€1,234.50"},
		{"0.005", "USD", "$0.01"},
		{"1085", "eur", "€1,085.00"},
		{"12.3", "XYZ", "12.30 XYZ"},
	}

	for _, tt := range tests {
		result := FormatMoney(decimal.RequireFromString(tt.input), tt.currency)
		if result != tt.expected {
			t.Errorf("FormatMoney(%s, %s) = %q; want %q", tt.input, tt.currency, result, tt.expected)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(decimal.RequireFromString("92.1658")); got != "92.2%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatSignedPercent(decimal.RequireFromString("2.44")); got != "+2.4%" {
		t.Errorf("FormatSignedPercent = %q", got)
	}
	if got := FormatSignedPercent(decimal.RequireFromString("-1.2")); got != "-1.2%" {
		t.Errorf("FormatSignedPercent = %q", got)
	}
}

func TestPluralize(t *testing.T) {
	if got := Pluralize(1, "Asset"); got != "1 Asset" {
		t.Errorf("got %q", got)
	}
	if got := Pluralize(3, "Asset"); got != "3 Assets" {
		t.Errorf("got %q", got)
	}
	if got := Pluralize(0, "Asset"); got != "0 Assets" {
		t.Errorf("got %q", got)
	}
}

func TestMask(t *testing.T) {
	if Mask("€1.00", true) != MaskedValue || Mask("€1.00", false) != "€1.00" {
		t.Error("mask mismatch")
	}
}
