package profile

import (
	"math"
	"reflect"
	"testing"
)

func TestSuggestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		years  int
		expect Grade
	}{
		{0, GradeJunior},
		{1, GradeJunior},
		{2, GradeMiddle},
		{4, GradeMiddle},
		{5, GradeSenior},
		{30, GradeSenior},
	}

	for _, tt := range tests {
		if got := SuggestGrade(tt.years); got != tt.expect {
			t.Fatalf("SuggestGrade(%d) = %q, want %q", tt.years, got, tt.expect)
		}
	}
}

func TestMaxSalaryFor(t *testing.T) {
	t.Parallel()

	for _, s := range []int{0, 1, 3, 99999, 100000, 123457} {
		got := MaxSalaryFor(s)
		if got < s {
			t.Fatalf("MaxSalaryFor(%d) = %d, must not be below the minimum", s, got)
		}
	}

	if got := MaxSalaryFor(100000); got != 150000 {
		t.Fatalf("expected 150000, got %d", got)
	}
	if got := MaxSalaryFor(3); got != 5 {
		t.Fatalf("expected 4.5 to round to 5, got %d", got)
	}
	if got := MaxSalaryFor(100001); got != 150002 {
		t.Fatalf("expected 150001.5 to round to 150002, got %d", got)
	}

	for _, s := range []int{SalaryCeiling, SalaryCeiling + 1, math.MaxInt / 4 * 3, math.MaxInt} {
		if got := MaxSalaryFor(s); got < s {
			t.Fatalf("MaxSalaryFor(%d) = %d overflowed below the minimum", s, got)
		}
	}
}

func TestParseGrade(t *testing.T) {
	t.Parallel()

	g, err := ParseGrade("  SeNiOr ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g != GradeSenior {
		t.Fatalf("expected senior, got %q", g)
	}

	if _, err := ParseGrade("lead"); err == nil {
		t.Fatal("expected error for unknown grade")
	}
}

func TestSplitInputKeepsEmptySegments(t *testing.T) {
	t.Parallel()

	got := SplitInput(" Backend ,, DevOps")
	want := []string{"Backend", "", "DevOps"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestListRoundTrip(t *testing.T) {
	t.Parallel()

	items := SplitInput("Python, Docker ,SQL")
	if got := SplitList(JoinList(items)); !reflect.DeepEqual(got, items) {
		t.Fatalf("expected %q, got %q", items, got)
	}

	if got := SplitList(""); got != nil {
		t.Fatalf("expected nil for empty list, got %q", got)
	}
}
