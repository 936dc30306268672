package extract

import "testing"

func TestNormalizeDate_Formats(t *testing.T) {
	// Every common way a contract writes the same date normalizes to
	// one canonical form
	cases := []struct {
		raw  string
		want string
	}{
		{"2024-03-01", "2024-03-01"},
		{"March 1, 2024", "2024-03-01"},
		{"Mar 1, 2024", "2024-03-01"},
		{"1 March 2024", "2024-03-01"},
		{"03/01/2024", "2024-03-01"},
		{"3/1/2024", "2024-03-01"},
		{"03-01-2024", "2024-03-01"},
		{"the 1st day of March, 2024", "2024-03-01"},
		{"this 1st day of March, 2024", "2024-03-01"},
		{"January 15, 2024", "2024-01-15"},
		{"the 22nd day of June, 1999", "1999-06-22"},
		{"December 3rd, 2023", "2023-12-03"},
	}

	for _, tc := range cases {
		got, ok := NormalizeDate(tc.raw)
		if !ok {
			t.Errorf("NormalizeDate(%q): expected success", tc.raw)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeDate_Idempotent(t *testing.T) {
	first, ok := NormalizeDate("June 5, 2021")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	second, ok := NormalizeDate(first)
	if !ok {
		t.Fatal("expected re-normalization to succeed")
	}
	if first != second {
		t.Errorf("normalization not idempotent: %q != %q", first, second)
	}
}

func TestNormalizeDate_TwoDigitYears(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"01/15/24", "2024-01-15"},
		{"01/15/68", "2068-01-15"},
		{"01/15/69", "1969-01-15"},
		{"01/15/99", "1999-01-15"},
	}

	for _, tc := range cases {
		got, ok := NormalizeDate(tc.raw)
		if !ok {
			t.Errorf("NormalizeDate(%q): expected success", tc.raw)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeDate_Unparseable(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"the near future",
		"Q3 2024",
		"sometime in March",
		"13/45/2024",
	} {
		if got, ok := NormalizeDate(raw); ok {
			t.Errorf("NormalizeDate(%q): expected failure, got %q", raw, got)
		}
	}
}
