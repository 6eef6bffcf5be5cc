package claude

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type fakeMessages struct {
	raw    string
	err    error
	params []anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = append(f.params, body)
	if f.err != nil {
		return nil, f.err
	}

	var msg anthropic.Message
	if err := json.Unmarshal([]byte(f.raw), &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func TestGeneratorRequest(t *testing.T) {
	fake := &fakeMessages{raw: `{"id":"msg_1","type":"message","role":"assistant","content":[{"type":"text","text":" Dear team "}]}`}
	g := newGenerator(fake, "", 0)

	out, err := g.GenerateContent(context.Background(), " hello ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Dear team" {
		t.Fatalf("unexpected output %q", out)
	}

	if len(fake.params) != 1 {
		t.Fatalf("expected a single call, got %d", len(fake.params))
	}
	params := fake.params[0]
	if params.MaxTokens != 300 {
		t.Fatalf("expected 300 max tokens, got %d", params.MaxTokens)
	}
	if string(params.Model) != defaultModel {
		t.Fatalf("unexpected model %q", params.Model)
	}
	if len(params.Messages) != 1 || params.Messages[0].Content[0].OfText.Text != "hello" {
		t.Fatalf("unexpected messages %+v", params.Messages)
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeMessages
	}{
		{name: "api error", fake: &fakeMessages{err: errors.New("overloaded")}},
		{name: "no text", fake: &fakeMessages{raw: `{"content":[]}`}},
		{name: "blank text", fake: &fakeMessages{raw: `{"content":[{"type":"text","text":"  "}]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGenerator(tt.fake, "claude-x", 100)
			if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
