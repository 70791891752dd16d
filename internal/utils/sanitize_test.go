package utils

import "testing"

func TestCleanFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"calculus-week3.pdf", "calculus week3"},
		{"Intro_To_Databases.pptx", "Intro To Databases"},
		{"/tmp/staged/lecture notes.pdf", "lecture notes"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanFilename(tc.in); got != tc.want {
			t.Errorf("CleanFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
