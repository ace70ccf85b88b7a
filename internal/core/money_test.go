package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"dot separator", "12.34", "12.34", false},
		{"comma separator", "12,34", "12.34", false},
		{"integer", "850", "850", false},
		{"zero", "0", "0", false},
		{"padded", " 19.99 ", "19.99", false},
		{"many decimals", "0.005", "0.005", false},
		{"negative", "-5", "", true},
		{"explicit plus", "+5", "", true},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"letters", "dodici", "", true},
		{"double comma", "1,2,3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) error = %v", tt.input, err)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"two places kept", "12.34", "12.34"},
		{"integer padded", "850", "850.00"},
		{"zero", "0", "0.00"},
		{"rounded", "0.005", "0.01"},
		{"negative balance", "-200", "-200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(decimal.RequireFromString(tt.input)); got != tt.want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
