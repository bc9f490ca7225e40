package service

import (
	"context"
	"errors"
	"testing"

	"concierge/internal/model"
)

func TestIntentRouter_WithoutAI(t *testing.T) {
	router := NewIntentRouter(nil, 6)

	got := router.Route(context.Background(), "hello there", nil, nil)
	if got != model.IntentSearch {
		t.Errorf("Route() without a model = %s, want SEARCH", got)
	}
}

func TestReduceIntentToken(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Intent
	}{
		{"bare word", "GREETING", model.IntentGreeting},
		{"lowercase", "greeting", model.IntentGreeting},
		{"verbose answer uses first token", "FOLLOW_UP because the user refines", model.IntentFollowUp},
		{"punctuation attached", "QUESTION.", model.IntentQuestion},
		{"unknown word", "BANANA", model.IntentSearch},
		{"empty answer", "   ", model.IntentSearch},
		{"search", "SEARCH", model.IntentSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reduceIntentToken(tt.raw); got != tt.want {
				t.Errorf("reduceIntentToken(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIntentRouter_ContextGating(t *testing.T) {
	displayed := []model.Product{{ID: "1", Title: "Sofa"}}

	tests := []struct {
		name         string
		intent       string
		lastProducts []model.Product
		want         model.Intent
	}{
		{"question with products", "QUESTION", displayed, model.IntentQuestion},
		{"question without products degrades", "QUESTION", nil, model.IntentSearch},
		{"follow-up with products", "FOLLOW_UP", displayed, model.IntentFollowUp},
		{"follow-up without products degrades", "FOLLOW_UP", nil, model.IntentSearch},
		{"greeting needs no products", "GREETING", nil, model.IntentGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewIntentRouter(&fakeChain{enabled: true, intent: tt.intent}, 6)
			got := router.Route(context.Background(), "whatever", nil, tt.lastProducts)
			if got != tt.want {
				t.Errorf("Route() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIntentRouter_ClassificationErrorDefaultsToSearch(t *testing.T) {
	router := NewIntentRouter(&fakeChain{enabled: true, intentErr: errors.New("timeout")}, 6)

	got := router.Route(context.Background(), "hi", nil, nil)
	if got != model.IntentSearch {
		t.Errorf("Route() on error = %s, want SEARCH", got)
	}
}
