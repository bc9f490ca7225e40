package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"concierge/internal/config"
)

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// EmbeddingRequest represents an embedding request
type EmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// EmbeddingResponse represents the embedding API response
type EmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// invoke runs a single system+user completion and returns the raw text.
func (c *OpenAIClient) invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	resp, err := c.ChatCompletion(ctx, ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.config.ChatTemperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed encodes a single text to a dense vector
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	req := EmbeddingRequest{
		Model: c.config.EmbeddingModel,
		Input: []string{text},
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/embeddings", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result EmbeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}
	return result.Data[0].Embedding, nil
}

// Prompt chains. Each returns raw model text; callers validate and fall
// back deterministically on error or malformed output.

const intentPrompt = `Classify user intent. Return ONLY ONE WORD.

GREETING: "hi", "hello", "hey"
FOLLOW_UP: Filtering previous results ("under $50", "red ones", "cheaper ones")
QUESTION: Asking about shown products ("which is cheapest", "what's the difference")
SEARCH: Looking for products ("find sofa", "show me beds", "sofas")

Return ONLY one word (GREETING/FOLLOW_UP/QUESTION/SEARCH).`

// ClassifyIntent reduces an utterance plus history to an intent word
func (c *OpenAIClient) ClassifyIntent(ctx context.Context, query, history string) (string, error) {
	user := fmt.Sprintf("History: %s\nQuery: %q", history, query)
	return c.invoke(ctx, intentPrompt, user)
}

const queryParsePrompt = `Extract what furniture the user wants.

Identify the MAIN furniture category:
- sofa/couch/sectional/loveseat -> "sofa"
- bed/bedframe -> "bed"
- chair/armchair/recliner -> "chair"
- table/desk -> "table"
- ottoman/footstool -> "ottoman"
- dresser/nightstand -> "storage"
- sports/exercise/gym/fitness -> "sports" (NOT furniture)
- appliance/electronic/gadget -> "electronics" (NOT furniture)

Return JSON:
{
  "category": "sofa|bed|chair|table|ottoman|storage|sports|electronics|other",
  "material": "wood|metal|fabric|leather|null",
  "color": "red|blue|gray|etc|null",
  "size": "large|small|null",
  "price_max": number or null
}

Examples:
"find sofas" -> {"category": "sofa"}
"red leather couch" -> {"category": "sofa", "material": "leather", "color": "red"}
"wooden dining table under $200" -> {"category": "table", "material": "wood", "price_max": 200}
"sports equipment" -> {"category": "sports"}
"beds" -> {"category": "bed"}

Return ONLY the JSON object.`

// ParseSearchQuery extracts a JSON filter record from a fresh search query
func (c *OpenAIClient) ParseSearchQuery(ctx context.Context, query string) (string, error) {
	return c.invoke(ctx, queryParsePrompt, fmt.Sprintf("Query: %q", query))
}

const titleClassifierPrompt = `What is the PRIMARY product category of this furniture item?

Look at the MAIN product being sold, not accessories or features mentioned.

Categories:
- sofa: sofas, couches, sectionals, loveseats (seating for 2+ people)
- chair: chairs, recliners, armchairs (seating for 1 person)
- bed: beds, bed frames
- table: tables, desks
- ottoman: ottomans, footstools
- storage: dressers, cabinets, nightstands
- other: anything else

Examples:
"FANYE Oversized 6 Seaters Modular Storage Sectional Sofa Couch" -> sofa
"MoNiBloom Massage Gaming Recliner Chair with Speakers" -> chair (it's a recliner chair, not a sofa)
"jela Kids Couch Large, Floor Sofa Modular" -> sofa (it's a couch/sofa for kids)
"Lazy Chair with Ottoman" -> chair (main item is chair, ottoman is accessory)
"Ottoman Storage Bench" -> ottoman
"Sofa Side Table" -> table (it's a table that goes beside sofas)

Return ONLY the category word (sofa/chair/bed/table/ottoman/storage/other).`

// ClassifyTitle names the primary category of a product title
func (c *OpenAIClient) ClassifyTitle(ctx context.Context, title string) (string, error) {
	return c.invoke(ctx, titleClassifierPrompt, fmt.Sprintf("Product Title: %q", title))
}

const followUpPrompt = `Extract filters from user request. Return ONLY valid JSON.

Extract filters:
- price_max: number or null (e.g., "under 130" -> 130)
- color: specific color or null
- size: "large", "small", or null
- material: "wood", "metal", "fabric", "leather", or null
- brand: specific brand name or null

Examples:
"under $100" -> {"price_max": 100}
"under 130$" -> {"price_max": 130}
"red ones" -> {"color": "red"}
"wooden ones" -> {"material": "wood"}
"large sofas" -> {"size": "large"}
"from FANYE" -> {"brand": "FANYE"}

Return ONLY valid JSON (no explanations).`

// ParseFollowUpFilters extracts a JSON filter record from a refinement
// request against previously shown products
func (c *OpenAIClient) ParseFollowUpFilters(ctx context.Context, productList, query string) (string, error) {
	user := fmt.Sprintf("PREVIOUS PRODUCTS:\n%s\n\nUSER REQUEST: %q", productList, query)
	return c.invoke(ctx, followUpPrompt, user)
}

const qaPrompt = `You are helping a customer compare furniture products.

Provide a helpful, concise answer (2-3 sentences max). If comparing products, be specific about which product you're referring to (e.g., "The first one...", "Product #2...").`

// AnswerProductQuestion answers a customer question about displayed products
func (c *OpenAIClient) AnswerProductQuestion(ctx context.Context, productContext, query string) (string, error) {
	user := fmt.Sprintf("DISPLAYED PRODUCTS:\n%s\n\nCUSTOMER QUESTION: %q", productContext, query)
	return c.invoke(ctx, qaPrompt, user)
}
