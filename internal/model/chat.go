package model

// ChatMessage is a single conversation turn, oldest first in a history.
type ChatMessage struct {
	Role string `json:"role" binding:"required"`
	Text string `json:"text"`
}

// RecommendRequest is the conversational query payload. The service is
// stateless: history and previously shown products arrive on every
// request.
type RecommendRequest struct {
	Query        string        `json:"query" binding:"required"`
	History      []ChatMessage `json:"history"`
	LastProducts []Product     `json:"last_products,omitempty"`
}

// Response type tags for RecommendResponse.
const (
	ResponseGreeting  = "greeting"
	ResponseAnswer    = "answer"
	ResponseProducts  = "products"
	ResponseNoResults = "no_results"
)

// RecommendResponse is the tagged union returned by the recommend
// endpoint. Recommendations is present only for the "products" type and
// never exceeds 3 items.
type RecommendResponse struct {
	Type            string    `json:"type"`
	Response        string    `json:"response"`
	Recommendations []Product `json:"recommendations,omitempty"`
	SearchID        string    `json:"search_id,omitempty"`
}

// FeedbackRequest records a user action against a logged search.
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse acknowledges a recorded action.
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
