package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"-4.75", "-4.75", true},
		{"+3500.00", "3500", true},
		{"3500.00", "3500", true},
		{"12,34", "12.34", true},
		{"1,234.56", "1234.56", true},
		{"1,234", "1234", true},
		{"$1,234.56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"-1.234,56", "-1234.56", true},
		{"€1.234.567,89", "1234567.89", true},
		{"1,234,567.89", "1234567.89", true},
		{"1.234,5,6", "", false},
		{"€-3,50", "-3.5", true},
		{"(20.00)", "-20", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"-", "", false},
		{"12a", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			want := decimal.RequireFromString(tc.out)
			if !got.Equal(want) {
				t.Fatalf("%q expected %s, got %s", tc.in, want, got)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("-4.75")); got != "-4.75" {
		t.Fatalf("got %q", got)
	}
	if got := FormatAmount(decimal.NewFromInt(3500)); got != "3500.00" {
		t.Fatalf("got %q", got)
	}
}
