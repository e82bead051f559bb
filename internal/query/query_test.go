package query

import (
	"testing"
	"time"
)

func TestText(t *testing.T) {
	ts := time.Date(2026, time.March, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		value any
		want  string
	}{
		{nil, "NULL"},
		{"Iron Maiden", "Iron Maiden"},
		{[]byte("AC/DC"), "AC/DC"},
		{int64(213), "213"},
		{0.99, "0.99"},
		{true, "true"},
		{ts, "2026-03-04T05:06:07Z"},
	}
	for _, tc := range tests {
		if got := Text(tc.value); got != tc.want {
			t.Fatalf("Text(%#v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
