// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/constitution-qa/internal/classify"
	apperrors "github.com/pdiddy/constitution-qa/internal/errors"
	"github.com/pdiddy/constitution-qa/internal/prompt"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

type stubRetriever struct {
	calls    int
	passages []types.Passage
	err      error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]types.Passage, error) {
	s.calls++
	return s.passages, s.err
}

type stubCompleter struct {
	calls    int
	payloads []prompt.Payload
	text     string
	err      error
}

func (s *stubCompleter) Complete(ctx context.Context, p prompt.Payload) (string, error) {
	s.calls++
	s.payloads = append(s.payloads, p)
	return s.text, s.err
}

func article21() types.Passage {
	return types.Passage{
		Article: types.Article{
			Number:  "21",
			Content: "No person shall be deprived of his life or personal liberty except according to procedure established by law.",
			Part:    "III",
		},
		Score: 3.5,
	}
}

func testService(retriever *stubRetriever, completer *stubCompleter, log *bytes.Buffer) *Service {
	var w io.Writer
	if log != nil {
		w = log
	}
	return New(classify.New(classify.DefaultRules()), retriever, prompt.New("test-model"), completer, w)
}

func TestAnswerEmptyMessage(t *testing.T) {
	retriever := &stubRetriever{}
	completer := &stubCompleter{}
	svc := testService(retriever, completer, nil)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Answer(context.Background(), msg)
		if err == nil {
			t.Fatalf("Answer(%q): expected validation error", msg)
		}
		if !apperrors.IsValidation(err) {
			t.Errorf("Answer(%q): kind = %s, want validation", msg, apperrors.KindOf(err))
		}
	}
	if retriever.calls != 0 || completer.calls != 0 {
		t.Error("validation failure must not touch retriever or completer")
	}
}

func TestAnswerMeta(t *testing.T) {
	retriever := &stubRetriever{}
	completer := &stubCompleter{text: "I look things up and summarize them."}
	svc := testService(retriever, completer, nil)

	ans, err := svc.Answer(context.Background(), "How do you work?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ans.Text, "I'm happy to explain how I work!") {
		t.Errorf("meta answer missing framing prefix: %q", ans.Text)
	}
	if !strings.Contains(ans.Text, "I look things up and summarize them.") {
		t.Errorf("meta answer missing model text: %q", ans.Text)
	}
	if retriever.calls != 0 {
		t.Error("meta question must not trigger retrieval")
	}
	if len(ans.Sources) != 0 {
		t.Errorf("meta answer has %d sources, want 0", len(ans.Sources))
	}
}

func TestAnswerOutOfDomain(t *testing.T) {
	retriever := &stubRetriever{}
	completer := &stubCompleter{}
	svc := testService(retriever, completer, nil)

	ans, err := svc.Answer(context.Background(), "what's the weather like today")
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text != prompt.MsgOutOfDomain {
		t.Errorf("Text = %q, want fixed out-of-domain message", ans.Text)
	}
	if retriever.calls != 0 || completer.calls != 0 {
		t.Error("out-of-domain must not call retriever or completer")
	}
}

func TestAnswerInDomainNoResults(t *testing.T) {
	retriever := &stubRetriever{}
	completer := &stubCompleter{}
	svc := testService(retriever, completer, nil)

	ans, err := svc.Answer(context.Background(), "What does article 9999 say?")
	if err != nil {
		t.Fatal(err)
	}
	if ans.Text != prompt.MsgNoArticles {
		t.Errorf("Text = %q, want fixed no-articles message", ans.Text)
	}
	if retriever.calls != 1 {
		t.Errorf("retriever called %d times, want 1", retriever.calls)
	}
	if completer.calls != 0 {
		t.Error("completer must not be called with no passages")
	}
}

func TestAnswerInDomainSuccess(t *testing.T) {
	retriever := &stubRetriever{passages: []types.Passage{article21()}}
	completer := &stubCompleter{text: "Article 21: it protects life and personal liberty."}
	svc := testService(retriever, completer, nil)

	ans, err := svc.Answer(context.Background(), "What does Article 21 say?")
	if err != nil {
		t.Fatal(err)
	}
	// In-domain model text passes through unchanged.
	if ans.Text != "Article 21: it protects life and personal liberty." {
		t.Errorf("Text = %q", ans.Text)
	}
	if len(ans.Sources) != 1 || ans.Sources[0].Number != "21" {
		t.Errorf("Sources = %v, want article 21", ans.Sources)
	}
	if completer.calls != 1 {
		t.Fatalf("completer called %d times, want 1", completer.calls)
	}
	if !strings.Contains(completer.payloads[0].User, "Article 21 (III):") {
		t.Errorf("payload missing passage context:\n%s", completer.payloads[0].User)
	}
}

func TestAnswerRetrievalFailure(t *testing.T) {
	var log bytes.Buffer
	retriever := &stubRetriever{err: fmt.Errorf("index unavailable")}
	completer := &stubCompleter{}
	svc := testService(retriever, completer, &log)

	ans, err := svc.Answer(context.Background(), "What does article 21 say?")
	if err != nil {
		t.Fatalf("downstream failures must not surface as errors: %v", err)
	}
	if ans.Text != MsgFailure {
		t.Errorf("Text = %q, want fixed failure message", ans.Text)
	}
	if len(ans.Sources) != 0 {
		t.Error("failed answer must have no sources")
	}
	if completer.calls != 0 {
		t.Error("completer must not be called after retrieval failure")
	}
	if !strings.Contains(log.String(), "retrieval failed") {
		t.Errorf("operator log missing detail: %q", log.String())
	}
}

func TestAnswerCompletionFailure(t *testing.T) {
	var log bytes.Buffer
	retriever := &stubRetriever{passages: []types.Passage{article21()}}
	completer := &stubCompleter{err: apperrors.New(apperrors.KindUpstream, "completion service returned 500: boom")}
	svc := testService(retriever, completer, &log)

	ans, err := svc.Answer(context.Background(), "What does article 21 say?")
	if err != nil {
		t.Fatalf("downstream failures must not surface as errors: %v", err)
	}
	if ans.Text != MsgFailure {
		t.Errorf("Text = %q, want fixed failure message", ans.Text)
	}
	if strings.Contains(ans.Text, "boom") {
		t.Error("upstream detail leaked into user-facing text")
	}
	if !strings.Contains(log.String(), "boom") {
		t.Errorf("operator log missing upstream detail: %q", log.String())
	}
}

func TestAnswerDeterministicForFixedReplies(t *testing.T) {
	svc := testService(&stubRetriever{}, &stubCompleter{}, nil)

	first, err := svc.Answer(context.Background(), "how do I cook pasta")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Answer(context.Background(), "how do I cook pasta")
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != second.Text {
		t.Error("identical input produced different fixed replies")
	}
}

func TestFormatMeta(t *testing.T) {
	got := Format(classify.IntentMeta, "model text")
	if !strings.HasPrefix(got, metaPrefix) || !strings.HasSuffix(got, metaClosing) {
		t.Errorf("meta framing not applied: %q", got)
	}
}

func TestFormatInDomainPassthrough(t *testing.T) {
	if got := Format(classify.IntentInDomain, "- point one\n- point two"); got != "- point one\n- point two" {
		t.Errorf("in-domain text altered: %q", got)
	}
}
