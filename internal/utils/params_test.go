package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-3", 0, -3},
		{"4.2", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestAtoi64Default(t *testing.T) {
	cases := []struct {
		in   string
		def  int64
		want int64
	}{
		{"9223372036854775807", 0, 9223372036854775807},
		{"", 10, 10},
		{"nope", 5, 5},
		{"-1", 0, -1},
	}
	for _, tc := range cases {
		if got := Atoi64Default(tc.in, tc.def); got != tc.want {
			t.Errorf("Atoi64Default(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}
