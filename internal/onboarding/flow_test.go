package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-helper/internal/profile"
)

type fakeSaver struct {
	saved []*profile.Profile
	err   error
}

func (f *fakeSaver) CreateProfile(_ context.Context, p *profile.Profile) error {
	if f.err != nil {
		return f.err
	}
	p.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, p)
	return nil
}

// jsonStore mimics a store that serializes sessions, like Redis does.
type jsonStore struct {
	raw map[int64][]byte
}

func (j *jsonStore) Get(_ context.Context, userID int64) (*Session, error) {
	raw, ok := j.raw[userID]
	if !ok {
		return nil, nil
	}
	return decodeSession(raw)
}

func (j *jsonStore) Put(_ context.Context, userID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	j.raw[userID] = raw
	return nil
}

func (j *jsonStore) Delete(_ context.Context, userID int64) error {
	delete(j.raw, userID)
	return nil
}

func send(t *testing.T, f *Flow, userID int64, inputs ...string) Reply {
	t.Helper()

	var reply Reply
	for _, in := range inputs {
		var err error
		reply, err = f.Handle(context.Background(), userID, in)
		if err != nil {
			t.Fatalf("handle %q: %v", in, err)
		}
	}
	return reply
}

func currentState(t *testing.T, store StateStore, userID int64) State {
	t.Helper()

	s, err := store.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if s == nil {
		return ""
	}
	return s.State
}

func TestFlowHappyPath(t *testing.T) {
	for name, store := range map[string]StateStore{
		"memory": NewMemoryStore(),
		"json":   &jsonStore{raw: map[int64][]byte{}},
	} {
		t.Run(name, func(t *testing.T) {
			saver := &fakeSaver{}
			core, logs := observer.New(zapcore.InfoLevel)
			flow := New(store, saver, zap.New(core))

			reply, err := flow.Start(context.Background(), 7)
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if reply.Text != PromptName {
				t.Fatalf("unexpected first prompt %q", reply.Text)
			}

			reply = send(t, flow, 7, "  Ivan  ", "3")
			if reply.Text != fmt.Sprintf(PromptGrade, profile.GradeMiddle) {
				t.Fatalf("unexpected grade prompt %q", reply.Text)
			}
			if currentState(t, store, 7) != StateAwaitingGrade {
				t.Fatal("suggested grade must not skip the grade step")
			}

			reply = send(t, flow, 7, "Middle", "150 000", "Backend, DevOps", "Москва, , Remote", "Go,Docker")
			if !reply.Done || reply.Text != MessageCreated {
				t.Fatalf("unexpected final reply %+v", reply)
			}
			if currentState(t, store, 7) != "" {
				t.Fatal("session must be discarded after completion")
			}

			if len(saver.saved) != 1 {
				t.Fatalf("expected one saved profile, got %d", len(saver.saved))
			}
			p := saver.saved[0]
			if p.UserID != 7 || p.Name != "Ivan" || p.Experience != 3 || p.Grade != profile.GradeMiddle {
				t.Fatalf("unexpected profile %+v", p)
			}
			if p.SalaryMin != 150000 || p.SalaryMax != 225000 {
				t.Fatalf("unexpected salary band %d-%d", p.SalaryMin, p.SalaryMax)
			}
			if len(p.Cities) != 3 || p.Cities[1] != "" || p.Cities[2] != "Remote" {
				t.Fatalf("empty segments must be kept, got %q", p.Cities)
			}
			if len(p.Technologies) != 2 || p.Technologies[1] != "Docker" {
				t.Fatalf("unexpected technologies %q", p.Technologies)
			}

			if logs.FilterMessage("profile created").Len() != 1 {
				t.Fatal("expected profile creation to be logged")
			}
		})
	}
}

func TestFlowRejectsInvalidInput(t *testing.T) {
	store := NewMemoryStore()
	flow := New(store, &fakeSaver{}, nil)
	if _, err := flow.Start(context.Background(), 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	tests := []struct {
		input  string
		expect string
		state  State
	}{
		{input: "   ", expect: errName, state: StateAwaitingName},
		{input: "Anna", expect: PromptExperience, state: StateAwaitingExperience},
		{input: "many", expect: errNumber, state: StateAwaitingExperience},
		{input: "-1", expect: errNumber, state: StateAwaitingExperience},
		{input: "0", expect: fmt.Sprintf(PromptGrade, profile.GradeJunior), state: StateAwaitingGrade},
		{input: "lead", expect: errGrade, state: StateAwaitingGrade},
		{input: "JUNIOR", expect: PromptSalary, state: StateAwaitingSalary},
		{input: "a lot", expect: errNumber, state: StateAwaitingSalary},
		{input: "-100", expect: errNumber, state: StateAwaitingSalary},
		{input: "7 000 000 000 000 000 000", expect: errNumber, state: StateAwaitingSalary},
		{input: strconv.Itoa(profile.SalaryCeiling + 1), expect: errNumber, state: StateAwaitingSalary},
		{input: "100 001", expect: PromptRoles, state: StateAwaitingRoles},
	}

	for _, tt := range tests {
		reply := send(t, flow, 1, tt.input)
		if reply.Text != tt.expect {
			t.Fatalf("input %q: expected %q, got %q", tt.input, tt.expect, reply.Text)
		}
		if got := currentState(t, store, 1); got != tt.state {
			t.Fatalf("input %q: expected state %s, got %s", tt.input, tt.state, got)
		}
	}

	s, _ := store.Get(context.Background(), 1)
	if s.Data[keySalaryMax] != 150002 {
		t.Fatalf("expected rounded max salary, got %v", s.Data[keySalaryMax])
	}
}

func TestFlowSalaryCeilingKeepsBand(t *testing.T) {
	for name, store := range map[string]StateStore{
		"memory": NewMemoryStore(),
		"json":   &jsonStore{raw: map[int64][]byte{}},
	} {
		t.Run(name, func(t *testing.T) {
			saver := &fakeSaver{}
			flow := New(store, saver, nil)
			if _, err := flow.Start(context.Background(), 5); err != nil {
				t.Fatalf("start: %v", err)
			}

			reply := send(t, flow, 5, "Ann", "3", "middle", "7 000 000 000 000 000 000")
			if reply.Text != errNumber {
				t.Fatalf("expected oversized salary to be rejected, got %q", reply.Text)
			}

			reply = send(t, flow, 5, strconv.Itoa(profile.SalaryCeiling), "Go", "Москва", "Go")
			if !reply.Done {
				t.Fatalf("expected onboarding to complete, got %+v", reply)
			}
			p := saver.saved[0]
			if p.SalaryMin != profile.SalaryCeiling || p.SalaryMax < p.SalaryMin {
				t.Fatalf("broken salary band %d-%d", p.SalaryMin, p.SalaryMax)
			}
		})
	}
}

func TestGradeKeyboardSuggestsFirst(t *testing.T) {
	kb := gradeKeyboard(profile.GradeSenior)
	if len(kb) != 1 || len(kb[0]) != 3 {
		t.Fatalf("unexpected keyboard %v", kb)
	}
	if kb[0][0] != "senior" || kb[0][1] != "junior" || kb[0][2] != "middle" {
		t.Fatalf("unexpected order %v", kb[0])
	}
}

func TestFlowSaveFailureKeepsLastStep(t *testing.T) {
	store := NewMemoryStore()
	saver := &fakeSaver{err: errors.New("database is locked")}
	flow := New(store, saver, nil)

	if _, err := flow.Start(context.Background(), 5); err != nil {
		t.Fatalf("start: %v", err)
	}
	send(t, flow, 5, "Ivan", "6", "senior", "300000", "SRE", "Remote")

	if _, err := flow.Handle(context.Background(), 5, "Go"); err == nil {
		t.Fatal("expected save error")
	}
	if got := currentState(t, store, 5); got != StateAwaitingTechnologies {
		t.Fatalf("expected state to stay at technologies, got %s", got)
	}

	saver.err = nil
	reply := send(t, flow, 5, "Go, Kubernetes")
	if !reply.Done {
		t.Fatal("expected retry to complete onboarding")
	}
	if saver.saved[0].Grade != profile.GradeSenior || saver.saved[0].SalaryMax != 450000 {
		t.Fatalf("unexpected profile %+v", saver.saved[0])
	}
}

func TestFlowWithoutSession(t *testing.T) {
	flow := New(NewMemoryStore(), &fakeSaver{}, nil)

	active, err := flow.Active(context.Background(), 3)
	if err != nil || active {
		t.Fatalf("expected no active session, got %v %v", active, err)
	}

	if _, err := flow.Handle(context.Background(), 3, "hi"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestFlowCancel(t *testing.T) {
	flow := New(NewMemoryStore(), &fakeSaver{}, nil)
	ctx := context.Background()

	if _, err := flow.Start(ctx, 3); err != nil {
		t.Fatalf("start: %v", err)
	}
	if active, _ := flow.Active(ctx, 3); !active {
		t.Fatal("expected active session")
	}
	if err := flow.Cancel(ctx, 3); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if active, _ := flow.Active(ctx, 3); active {
		t.Fatal("expected session to be gone")
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	const userID = -424242
	defer store.Delete(ctx, userID)

	flow := New(store, &fakeSaver{}, nil)
	if _, err := flow.Start(ctx, userID); err != nil {
		t.Fatalf("start: %v", err)
	}
	reply := send(t, flow, userID, "Ivan", "1", "junior", "1000", "QA", "Воронеж", "Selenium")
	if !reply.Done {
		t.Fatalf("expected onboarding to complete, got %+v", reply)
	}

	s, err := store.Get(ctx, userID)
	if err != nil || s != nil {
		t.Fatalf("expected session to be removed, got %+v %v", s, err)
	}
}
