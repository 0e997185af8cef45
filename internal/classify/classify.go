// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify routes each incoming question to one of three intents:
// a question about the assistant itself, a constitutional/legal question,
// or anything else. Classification is pure, deterministic, case-insensitive
// substring matching against two ordered rule sets.
// See docs/ARCHITECTURE.md § Classification.
package classify

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Intent is the three-way routing decision made per incoming message.
type Intent int

const (
	// IntentMeta marks questions about the assistant itself ("how do you
	// work", "what model do you use"). Takes priority over IntentInDomain.
	IntentMeta Intent = iota

	// IntentInDomain marks likely constitutional or legal questions.
	IntentInDomain

	// IntentOutOfDomain marks everything else. Out-of-domain questions
	// never reach the corpus index or the completion service.
	IntentOutOfDomain
)

// String returns the intent name for logs and test output.
func (i Intent) String() string {
	switch i {
	case IntentMeta:
		return "meta"
	case IntentInDomain:
		return "in-domain"
	case IntentOutOfDomain:
		return "out-of-domain"
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// Rules holds the two ordered phrase sets driving classification. They are
// data, not code: a deployment can version and tune them independently of
// the pipeline by pointing the classifier at a YAML rules file.
type Rules struct {
	// MetaPhrases are self-referential phrases. A message containing any
	// of them is classified IntentMeta regardless of other content.
	MetaPhrases []string `yaml:"meta_phrases"`

	// DomainKeywords are constitutional and legal terms. A message
	// containing any of them (and no meta phrase) is IntentInDomain.
	DomainKeywords []string `yaml:"domain_keywords"`
}

// DefaultRules returns the built-in rule sets.
func DefaultRules() Rules {
	return Rules{
		MetaPhrases: []string{
			"how do you work",
			"how does this chatbot work",
			"what is your backend",
			"how are you built",
			"tell me about yourself",
			"which ai model",
			"what model do you use",
			"do you use llama",
			"do you use gemini",
			"what ai do you use",
			"what language model",
			"what llm",
			"what technology",
			"what system",
		},
		DomainKeywords: []string{
			"constitution", "article", "fundamental", "rights", "duties",
			"amendment", "parliament", "president", "supreme court",
			"high court", "directive principles", "preamble", "citizenship",
			"emergency", "governor", "minister", "lok sabha", "rajya sabha",
			"bill", "law", "legislative", "executive", "judicial",
			"police", "crime", "rob", "steal", "theft", "file", "complaint",
			"legal", "procedure", "court", "justice", "lawyer", "advocate",
			"criminal", "civil", "case", "fir", "first information report",
			"right", "protection", "security", "safety", "punishment",
		},
	}
}

// LoadRules reads a Rules YAML file. Empty sections fall back to the
// built-in defaults so a file can override just one set.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("reading rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	defaults := DefaultRules()
	if len(rules.MetaPhrases) == 0 {
		rules.MetaPhrases = defaults.MetaPhrases
	}
	if len(rules.DomainKeywords) == 0 {
		rules.DomainKeywords = defaults.DomainKeywords
	}
	return rules, nil
}

// Classifier matches messages against a fixed rule set.
type Classifier struct {
	metaPhrases    []string
	domainKeywords []string
}

// New builds a Classifier from rules, lower-casing each phrase once.
func New(rules Rules) *Classifier {
	return &Classifier{
		metaPhrases:    lowered(rules.MetaPhrases),
		domainKeywords: lowered(rules.DomainKeywords),
	}
}

// Classify maps a message to an intent. The meta check runs first: a
// message matching both rule sets is IntentMeta. Callers must reject
// empty messages before classification.
func (c *Classifier) Classify(message string) Intent {
	lower := strings.ToLower(message)

	for _, phrase := range c.metaPhrases {
		if strings.Contains(lower, phrase) {
			return IntentMeta
		}
	}

	for _, keyword := range c.domainKeywords {
		if strings.Contains(lower, keyword) {
			return IntentInDomain
		}
	}

	return IntentOutOfDomain
}

func lowered(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = strings.ToLower(p)
	}
	return out
}
