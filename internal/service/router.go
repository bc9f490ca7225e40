package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"concierge/internal/model"
)

// IntentRouter classifies an utterance against conversation context into
// one of the intent constants. Classification is delegated to a model
// call; everything about the model's answer is treated as untrusted.
type IntentRouter struct {
	aiClient      ChainClient
	historyWindow int
}

// NewIntentRouter creates a new intent router
func NewIntentRouter(aiClient ChainClient, historyWindow int) *IntentRouter {
	return &IntentRouter{
		aiClient:      aiClient,
		historyWindow: historyWindow,
	}
}

// Route determines the effective intent of an utterance. Intents that
// operate on previously shown products (QUESTION, FOLLOW_UP) fall through
// to SEARCH when there are none; a failed or unrecognized classification
// defaults to SEARCH.
func (r *IntentRouter) Route(ctx context.Context, utterance string, history []model.ChatMessage, lastProducts []model.Product) model.Intent {
	intent := r.classify(ctx, utterance, history)

	if (intent == model.IntentQuestion || intent == model.IntentFollowUp) && len(lastProducts) == 0 {
		return model.IntentSearch
	}
	return intent
}

func (r *IntentRouter) classify(ctx context.Context, utterance string, history []model.ChatMessage) model.Intent {
	if r.aiClient == nil || !r.aiClient.IsEnabled() {
		return model.IntentSearch
	}

	raw, err := r.aiClient.ClassifyIntent(ctx, utterance, r.formatHistory(history))
	if err != nil {
		log.Printf("Intent classification failed: %v, defaulting to SEARCH", err)
		return model.IntentSearch
	}

	return reduceIntentToken(raw)
}

// reduceIntentToken collapses a possibly verbose model answer to an
// intent: first whitespace-delimited token, upper-cased, then substring
// matched against the known intent names. Unknown answers mean SEARCH.
func reduceIntentToken(raw string) model.Intent {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return model.IntentSearch
	}
	token := strings.ToUpper(fields[0])

	switch {
	case strings.Contains(token, string(model.IntentGreeting)):
		return model.IntentGreeting
	case strings.Contains(token, string(model.IntentFollowUp)):
		return model.IntentFollowUp
	case strings.Contains(token, string(model.IntentQuestion)):
		return model.IntentQuestion
	default:
		return model.IntentSearch
	}
}

// formatHistory renders the most recent turns for the intent prompt.
func (r *IntentRouter) formatHistory(history []model.ChatMessage) string {
	window := history
	if r.historyWindow > 0 && len(window) > r.historyWindow {
		window = window[len(window)-r.historyWindow:]
	}

	lines := make([]string, 0, len(window))
	for _, m := range window {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Text))
	}
	return strings.Join(lines, "\n")
}
