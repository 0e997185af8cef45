// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt assembles the completion request for each intent, or
// decides that no upstream call should be made at all.
// See docs/ARCHITECTURE.md § Prompt Assembly.
package prompt

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/constitution-qa/internal/classify"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

// Token budgets per intent. Meta answers are short explanatory text;
// in-domain answers need room for structured multi-point output.
const (
	metaMaxTokens   = 400
	answerMaxTokens = 800

	defaultTemperature = 0.7
)

// MsgOutOfDomain is returned verbatim for questions outside the corpus
// domain. No upstream call is made.
const MsgOutOfDomain = "I'm sorry, I couldn't find any relevant constitutional information for your query. Could you please rephrase your question to be more specific about the Indian Constitution?"

// MsgNoArticles is returned verbatim when an in-domain question matches
// nothing in the corpus. No upstream call is made.
const MsgNoArticles = "I couldn't find any specific articles related to your query. Could you please rephrase your question or be more specific about which aspect of the Indian Constitution you'd like to learn about?"

// metaSystemPrompt instructs the model when the user asks about the
// assistant itself.
const metaSystemPrompt = `You are an AI assistant that explains how the Indian Constitution chatbot works. Be concise and clear in your explanations. Mention that the chatbot combines a hosted language model, reached through the OpenRouter API, with full-text search over an indexed copy of the Constitution to find relevant articles.`

// answerSystemPrompt instructs the model for constitutional questions.
const answerSystemPrompt = `You are a helpful assistant specializing in the Indian Constitution.
Provide clear, concise, and accurate answers based on the constitutional articles provided.
Always cite specific articles when explaining rights or procedures.
Format your response in a structured way with bullet points or numbered lists where appropriate.
Focus on explaining the practical implications and significance of the constitutional provisions.
Keep your responses focused and to the point.
Do not include any disclaimers about being designed for constitutional questions.
If the question is about a specific article, start your response with "Article [number]:" followed by a clear explanation.
Use proper formatting and ensure all spellings are correct.`

// answerUserTmpl renders the retrieved excerpts plus the question and a
// formatting directive into the user message.
var answerUserTmpl = template.Must(template.New("answer").Parse(`Based on these excerpts from the Indian Constitution:

{{.Context}}

Question: {{.Question}}

Please provide a clear and structured answer, explaining the key points and citing specific articles. Use bullet points where appropriate.`))

// Payload is a fully assembled completion request. Immutable once built;
// consumed exactly once by the completion gateway.
type Payload struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Plan is the outcome of assembly: either a payload to send upstream or a
// fixed local reply. Exactly one of the two is set — the gateway is
// structurally unreachable on the fixed path.
type Plan struct {
	payload *Payload
	fixed   string
}

// Call wraps a payload destined for the completion service.
func Call(p Payload) Plan {
	return Plan{payload: &p}
}

// Fixed wraps a local reply that bypasses the completion service.
func Fixed(msg string) Plan {
	return Plan{fixed: msg}
}

// Payload returns the upstream payload, if this plan makes a call.
func (p Plan) Payload() (Payload, bool) {
	if p.payload == nil {
		return Payload{}, false
	}
	return *p.payload, true
}

// Fixed returns the local reply, if this plan short-circuits.
func (p Plan) Fixed() (string, bool) {
	return p.fixed, p.fixed != ""
}

// Assembler builds prompts for a fixed model identifier.
type Assembler struct {
	model string
}

// New creates an Assembler targeting model.
func New(model string) *Assembler {
	return &Assembler{model: model}
}

// Assemble maps an intent, the raw message, and any retrieved passages to
// a Plan. Out-of-domain questions and in-domain questions with no passages
// short-circuit to fixed messages.
func (a *Assembler) Assemble(intent classify.Intent, message string, passages []types.Passage) Plan {
	switch intent {
	case classify.IntentMeta:
		return Call(Payload{
			Model:       a.model,
			System:      metaSystemPrompt,
			User:        message,
			Temperature: defaultTemperature,
			MaxTokens:   metaMaxTokens,
		})

	case classify.IntentInDomain:
		if len(passages) == 0 {
			return Fixed(MsgNoArticles)
		}
		return Call(Payload{
			Model:       a.model,
			System:      answerSystemPrompt,
			User:        renderAnswerUser(message, passages),
			Temperature: defaultTemperature,
			MaxTokens:   answerMaxTokens,
		})

	default:
		return Fixed(MsgOutOfDomain)
	}
}

// renderAnswerUser interpolates each passage as
// "Article {number} ({part}{, chapter}):\n{content}", joined by blank
// lines, followed by the question.
func renderAnswerUser(message string, passages []types.Passage) string {
	entries := make([]string, len(passages))
	for i, p := range passages {
		entries[i] = passageEntry(p.Article)
	}

	var buf bytes.Buffer
	// The template cannot fail on string fields.
	answerUserTmpl.Execute(&buf, struct {
		Context  string
		Question string
	}{
		Context:  strings.Join(entries, "\n\n"),
		Question: message,
	})
	return buf.String()
}

func passageEntry(a types.Article) string {
	part := a.Part
	if part == "" {
		part = "Part Not Specified"
	}
	heading := "Article " + a.Number + " (" + part
	if a.Chapter != "" {
		heading += ", " + a.Chapter
	}
	heading += "):"
	return heading + "\n" + a.Content
}
