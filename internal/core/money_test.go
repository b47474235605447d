package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0", 0, true},
		{"5,000", 500000, true},
		{"₹5,000.50", 500050, true},
		{"Rs 700", 70000, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"92233720368547757.99", 9223372036854775799, true},
		{"92233720368547758.99", 0, false},
		{"92233720368547758", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error, got %d", tc.in, got)
			}
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		m       Money
		decimal string
		format  string
	}{
		{Money{Cents: 0}, "0", "₹0"},
		{Money{Cents: 1200000}, "12000", "₹12,000"},
		{Money{Cents: 123456789}, "1234567.89", "₹1,234,567.89"},
		{Money{Cents: 50005}, "500.05", "₹500.05"},
	}
	for _, tc := range cases {
		if got := tc.m.Decimal(); got != tc.decimal {
			t.Fatalf("Decimal(%d) = %q, want %q", tc.m.Cents, got, tc.decimal)
		}
		if got := tc.m.Format(); got != tc.format {
			t.Fatalf("Format(%d) = %q, want %q", tc.m.Cents, got, tc.format)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	if got := MoneyFromFloat(5000); got.Cents != 500000 {
		t.Fatalf("got %d", got.Cents)
	}
	if got := MoneyFromFloat(-3); got.Cents != 0 {
		t.Fatalf("negative should clamp, got %d", got.Cents)
	}
	if got := (Money{Cents: -5}).NonNegative(); got.Cents != 0 {
		t.Fatalf("NonNegative got %d", got.Cents)
	}
}
