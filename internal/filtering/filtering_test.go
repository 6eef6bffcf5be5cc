package filtering

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-helper/internal/headhunter"
)

type fakeChecker struct {
	stored map[string]bool
	err    error
	calls  int
}

func (f *fakeChecker) HasVacancy(_ context.Context, profileID uint, externalID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.stored[fmt.Sprintf("%d/%s", profileID, externalID)], nil
}

func listings(n int) *headhunter.Listings {
	l := &headhunter.Listings{}
	for i := 1; i <= n; i++ {
		l.Items = append(l.Items, &headhunter.Listing{ID: fmt.Sprint(i)})
	}
	return l
}

func TestLimit(t *testing.T) {
	out, step, err := NewLimit(10).Apply(context.Background(), listings(12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 10 {
		t.Fatalf("expected 10 listings, got %d", out.Len())
	}
	if out.Items[9].ID != "10" {
		t.Fatalf("expected scrape order to be kept, got last id %s", out.Items[9].ID)
	}
	if step != (Step{Initial: 12, Dropped: 2, Left: 10}) {
		t.Fatalf("unexpected step: %+v", step)
	}

	out, step, _ = NewLimit(10).Apply(context.Background(), listings(3))
	if out.Len() != 3 || step.Dropped != 0 {
		t.Fatalf("expected short input untouched, got %d listings and step %+v", out.Len(), step)
	}
}

func TestStored(t *testing.T) {
	checker := &fakeChecker{stored: map[string]bool{"5/2": true, "6/3": true}}

	out, step, err := NewStored(checker, 5).Apply(context.Background(), listings(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.IDs(); len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("unexpected ids: %v", got)
	}
	if step != (Step{Initial: 3, Dropped: 1, Left: 2}) {
		t.Fatalf("unexpected step: %+v", step)
	}
	if checker.calls != 3 {
		t.Fatalf("expected one lookup per listing, got %d", checker.calls)
	}
}

func TestStoredError(t *testing.T) {
	checker := &fakeChecker{err: errors.New("db is gone")}

	_, _, err := NewStored(checker, 1).Apply(context.Background(), listings(1))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunLogsStepsAndKeepsInput(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	input := listings(12)
	checker := &fakeChecker{stored: map[string]bool{"1/1": true}}

	out, err := Run(context.Background(), logger, []Filter{NewLimit(10), NewStored(checker, 1)}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 9 {
		t.Fatalf("expected 9 listings, got %d", out.Len())
	}
	if input.Len() != 12 {
		t.Fatalf("input must not be modified, got %d listings", input.Len())
	}

	entries := logs.FilterMessage("filter step").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 step logs, got %d", len(entries))
	}
	if name := entries[1].ContextMap()["name"]; name != "stored" {
		t.Fatalf("expected second step to be stored, got %v", name)
	}
	if dropped := entries[0].ContextMap()["dropped"]; dropped != int64(2) {
		t.Fatalf("expected limit to drop 2, got %v", dropped)
	}
}

func TestRunWrapsStepError(t *testing.T) {
	checker := &fakeChecker{err: errors.New("boom")}

	_, err := Run(context.Background(), nil, []Filter{NewStored(checker, 1)}, listings(2))
	if err == nil || err.Error() != "stored: check listing 1: boom" {
		t.Fatalf("unexpected error: %v", err)
	}
}
