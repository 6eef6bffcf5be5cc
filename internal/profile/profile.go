// Package profile holds the job-seeker profile collected during onboarding.
package profile

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Grade string

const (
	GradeJunior Grade = "junior"
	GradeMiddle Grade = "middle"
	GradeSenior Grade = "senior"
)

// Grades lists the accepted grades in the order they are offered to the user.
var Grades = []Grade{GradeJunior, GradeMiddle, GradeSenior}

// listSeparator joins stored preference lists. Segments are trimmed on input,
// so joining and splitting on it round-trips.
const listSeparator = ", "

type Profile struct {
	ID           uint
	UserID       int64
	Name         string
	Experience   int
	Grade        Grade
	SalaryMin    int
	SalaryMax    int
	Roles        []string
	Cities       []string
	Technologies []string
	CreatedAt    time.Time
}

// ParseGrade accepts a grade case-insensitively.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GradeJunior, GradeMiddle, GradeSenior:
		return g, nil
	}
	return "", fmt.Errorf("unknown grade %q", s)
}

// SuggestGrade derives a grade from years of experience.
func SuggestGrade(years int) Grade {
	switch {
	case years < 2:
		return GradeJunior
	case years < 5:
		return GradeMiddle
	default:
		return GradeSenior
	}
}

// SalaryCeiling is the largest minimum salary whose band still fits in an int.
const SalaryCeiling = math.MaxInt / 3 * 2

// MaxSalaryFor returns the upper bound of the salary band for the given
// minimum: min * 1.5 rounded half up. Minimums above SalaryCeiling saturate.
func MaxSalaryFor(minSalary int) int {
	if minSalary > SalaryCeiling {
		return math.MaxInt
	}
	if minSalary < 0 {
		return minSalary
	}
	return minSalary + (minSalary+1)/2
}

// SplitInput splits a comma separated answer and trims every segment.
// Empty segments are kept.
func SplitInput(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// JoinList encodes a preference list for storage.
func JoinList(items []string) string {
	return strings.Join(items, listSeparator)
}

// SplitList decodes a stored preference list.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
