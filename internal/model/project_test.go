package model

import "testing"

func TestBranchName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{input: NoBranch, expected: ""},
		{input: "", expected: ""},
		{input: "develop", expected: "develop"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := BranchName(tc.input); got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}
