package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Widget", "Widget"},
		{"whitespace", "  Widget \t", "Widget"},
		{"excel formula wrapper", `="00123"`, "00123"},
		{"leading equals", "=42", "42"},
		{"double quotes", `"Dock B"`, "Dock B"},
		{"single quotes", `'Dock B'`, "Dock B"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCellString(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"string", " abc ", "abc"},
		{"integer", 12, "12"},
		{"float without trailing zeros", 12.5, "12.5"},
		{"whole float", float64(3), "3"},
		{"bool", true, "true"},
		{"bytes", []byte("x"), "x"},
		{"decimal stringer", decimal.RequireFromString("9.99"), "9.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellString(tt.input); got != tt.want {
				t.Errorf("CellString(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"5", 5},
		{"-3", -3},
		{"1,200", 1200},
		{"2.9", 2},
		{"-2.9", -2},
		{"(4)", -4},
		{"1e2", 100},
		{"", 0},
		{"abc", 0},
		{"12abc", 0},
		{"$7", 7},
		{"9223372036854775807", math.MaxInt},
		{"99999999999999999999", math.MaxInt},
		{"-99999999999999999999", math.MinInt},
		{"1e30", math.MaxInt},
		{"-1e30", math.MinInt},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToInt(tt.input); got != tt.want {
				t.Errorf("ToInt(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.50", "1.5"},
		{"$1,234.56", "1234.56"},
		{"€10", "10"},
		{"£0.99", "0.99"},
		{"(12.50)", "-12.5"},
		{".5", "0.5"},
		{"", "0"},
		{"n/a", "0"},
		{"1.2.3", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToDecimal(tt.input)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ToDecimal(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{" True ", true},
		{"yes", false},
		{"1", false},
		{"false", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToBool(tt.input); got != tt.want {
				t.Errorf("ToBool(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
