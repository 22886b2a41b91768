package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents() != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents(), err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestParseMoneySigned(t *testing.T) {
	m, err := ParseMoney("-12,5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Equal(MoneyFromCents(-1250)) {
		t.Fatalf("got %s, want -12.50", m)
	}
	if _, err := ParseMoney("twelve"); err == nil {
		t.Fatalf("expected error for non-numeric input")
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 is the classic float trap.
	sum := MustMoney("0.1").Add(MustMoney("0.2"))
	if !sum.Equal(MustMoney("0.3")) {
		t.Fatalf("0.1 + 0.2 = %s", sum.Decimal())
	}
	if got := MinMoney(MustMoney("5"), MustMoney("3")); !got.Equal(MustMoney("3")) {
		t.Errorf("MinMoney = %s", got)
	}
	if got := MaxMoney(MustMoney("-5"), MustMoney("-3")); !got.Equal(MustMoney("-3")) {
		t.Errorf("MaxMoney = %s", got)
	}
	if got := Sum(MustMoney("1"), MustMoney("2.5"), MustMoney("-0.5")); !got.Equal(MustMoney("3")) {
		t.Errorf("Sum = %s", got)
	}
}

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		in       Money
		currency string
		want     string
	}{
		{MustMoney("1234.5"), "USD", "$1,234.50"},
		{MustMoney("0"), "", "$0.00"},
		{MustMoney("-20"), "USD", "-$20.00"},
	}
	for _, tc := range cases {
		if got := tc.in.Format(tc.currency); got != tc.want {
			t.Errorf("Format(%s, %q) = %q, want %q", tc.in, tc.currency, got, tc.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12.5, "b": "3.25", "c": null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.A.Equal(MustMoney("12.5")) || !v.B.Equal(MustMoney("3.25")) || !v.C.IsZero() {
		t.Fatalf("decoded %s %s %s", v.A, v.B, v.C)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":12.5,"b":3.25,"c":0}` {
		t.Fatalf("encoded %s", out)
	}
}
