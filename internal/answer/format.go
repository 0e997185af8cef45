// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package answer

import "github.com/pdiddy/constitution-qa/internal/classify"

// MsgFailure is the one fixed message shown for any retrieval or upstream
// failure. Raw error detail goes to the operator log, never the user.
const MsgFailure = "I'm sorry, something went wrong while processing your request. Please try again."

const metaPrefix = "I'm happy to explain how I work! I'm a specialized chatbot focused on the Indian Constitution.\n\n"

const metaClosing = "\n\nI answer questions by combining a hosted language model, reached through the OpenRouter API, with full-text search over an indexed copy of the Constitution. My primary purpose is to help you understand the Indian Constitution better."

// Format post-processes successful model output per intent: meta answers
// get the fixed framing, everything else passes through unchanged (the
// in-domain prompt already mandates markdown structure).
func Format(intent classify.Intent, text string) string {
	if intent == classify.IntentMeta {
		return metaPrefix + text + metaClosing
	}
	return text
}
