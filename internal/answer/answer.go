// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package answer orchestrates the question pipeline: validate, classify,
// retrieve, assemble, complete, format. Each request is stateless and
// strictly sequential; the corpus index and the completion service are the
// only collaborators touched.
// See docs/ARCHITECTURE.md § Answer Pipeline.
package answer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/constitution-qa/internal/classify"
	apperrors "github.com/pdiddy/constitution-qa/internal/errors"
	"github.com/pdiddy/constitution-qa/internal/prompt"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

// Retriever fetches ranked passages for an in-domain question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]types.Passage, error)
}

// Completer sends an assembled payload to the completion service.
type Completer interface {
	Complete(ctx context.Context, p prompt.Payload) (string, error)
}

// Service wires the pipeline stages together. Construct with New; a
// Service is safe for concurrent use since every stage is stateless.
type Service struct {
	classifier *classify.Classifier
	retriever  Retriever
	assembler  *prompt.Assembler
	completer  Completer
	log        io.Writer
}

// New builds the pipeline from its stages. log receives operator-facing
// diagnostics (upstream error bodies, retrieval failures); nil discards
// them. Nothing written to log ever reaches the end user.
func New(classifier *classify.Classifier, retriever Retriever, assembler *prompt.Assembler, completer Completer, log io.Writer) *Service {
	if log == nil {
		log = io.Discard
	}
	return &Service{
		classifier: classifier,
		retriever:  retriever,
		assembler:  assembler,
		completer:  completer,
		log:        log,
	}
}

// Answer runs one message through the pipeline. The returned error is
// non-nil only for boundary validation (empty message); every downstream
// failure collapses into the fixed generic failure text with the detail
// logged for operators, so the caller always has something to show.
func (s *Service) Answer(ctx context.Context, message string) (types.Answer, error) {
	if strings.TrimSpace(message) == "" {
		return types.Answer{}, apperrors.New(apperrors.KindValidation, "message is required")
	}

	intent := s.classifier.Classify(message)

	var passages []types.Passage
	if intent == classify.IntentInDomain {
		var err error
		passages, err = s.retriever.Retrieve(ctx, message)
		if err != nil {
			s.logf("retrieval failed: %v",
				apperrors.Wrap(apperrors.KindRetrieval, "corpus query", err))
			return types.Answer{Text: MsgFailure}, nil
		}
	}

	plan := s.assembler.Assemble(intent, message, passages)
	if fixed, ok := plan.Fixed(); ok {
		return types.Answer{Text: fixed}, nil
	}

	payload, ok := plan.Payload()
	if !ok {
		// Assembler contract: exactly one of call/fixed per plan.
		s.logf("assembler produced an empty plan for intent %s", intent)
		return types.Answer{Text: MsgFailure}, nil
	}

	text, err := s.completer.Complete(ctx, payload)
	if err != nil {
		s.logf("completion failed (%s): %v", apperrors.KindOf(err), err)
		return types.Answer{Text: MsgFailure}, nil
	}

	ans := types.Answer{Text: Format(intent, text)}
	if intent == classify.IntentInDomain {
		ans.Sources = sourceArticles(passages)
	}
	return ans, nil
}

func (s *Service) logf(format string, args ...any) {
	fmt.Fprintf(s.log, format+"\n", args...)
}

func sourceArticles(passages []types.Passage) []types.Article {
	articles := make([]types.Article, len(passages))
	for i, p := range passages {
		articles[i] = p.Article
	}
	return articles
}
