package service

import (
	"context"
)

// ChainClient is the interface the pipeline uses to invoke model calls.
// Every method returns free-form text; the caller owns validation and a
// deterministic fallback, so a failed or malformed call never fails a
// request.
type ChainClient interface {
	// ClassifyIntent reduces an utterance plus recent history to one of
	// the intent words (GREETING/FOLLOW_UP/QUESTION/SEARCH).
	ClassifyIntent(ctx context.Context, query, history string) (string, error)

	// ParseSearchQuery extracts a JSON filter record (category, material,
	// color, size, price_max) from a fresh search query.
	ParseSearchQuery(ctx context.Context, query string) (string, error)

	// ClassifyTitle names the primary category of a product title.
	ClassifyTitle(ctx context.Context, title string) (string, error)

	// ParseFollowUpFilters extracts a JSON filter record from a
	// refinement request against previously shown products.
	ParseFollowUpFilters(ctx context.Context, productList, query string) (string, error)

	// AnswerProductQuestion answers a customer question about the
	// displayed products.
	AnswerProductQuestion(ctx context.Context, productContext, query string) (string, error)

	// Embed encodes text to a dense vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// IsEnabled returns whether the client is configured and ready.
	IsEnabled() bool
}

// Ensure OpenAIClient implements ChainClient
var _ ChainClient = (*OpenAIClient)(nil)
