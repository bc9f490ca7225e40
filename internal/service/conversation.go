package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"concierge/internal/model"
)

// Canned responses. Every failure path downgrades to one of these so a
// request never surfaces a transport or model error to the caller.
const (
	greetingResponse     = "Hello! I can help you find furniture. What are you looking for?"
	rephraseResponse     = "Could you rephrase that question?"
	notFurnitureResponse = "I couldn't find any furniture matching your search. This is a furniture store - try searching for sofas, beds, chairs, tables, or other home furnishings."
	emptyIndexResponse   = "I couldn't find any products."
	noMatchesResponse    = "I couldn't find any furniture matching your search. Try different keywords or filters."
	genericNoResults     = "None of the displayed products match those criteria."
)

// SearchLogger records served searches for the analytics surface.
// Implemented by repository.PostgresRepository.
type SearchLogger interface {
	LogSearch(ctx context.Context, searchID, query string, intent model.Intent, spec *model.FilterSpec, resultCount int, productIDs []string, responseTimeMs int) error
}

// ConversationService routes each utterance through intent detection
// and the matching pipeline branch, and always produces a well-formed
// response.
type ConversationService struct {
	router     *IntentRouter
	extractor  *AttributeExtractor
	retriever  *CandidateRetriever
	selector   *ResultSelector
	filter     *FilterEngine
	aiClient   ChainClient
	logger     SearchLogger
	maxResults int
}

func NewConversationService(
	router *IntentRouter,
	extractor *AttributeExtractor,
	retriever *CandidateRetriever,
	selector *ResultSelector,
	filter *FilterEngine,
	aiClient ChainClient,
	logger SearchLogger,
	maxResults int,
) *ConversationService {
	return &ConversationService{
		router:     router,
		extractor:  extractor,
		retriever:  retriever,
		selector:   selector,
		filter:     filter,
		aiClient:   aiClient,
		logger:     logger,
		maxResults: maxResults,
	}
}

// Recommend handles one conversational turn.
func (s *ConversationService) Recommend(ctx context.Context, req *model.RecommendRequest) *model.RecommendResponse {
	started := time.Now()
	intent := s.router.Route(ctx, req.Query, req.History, req.LastProducts)

	switch intent {
	case model.IntentGreeting:
		return &model.RecommendResponse{Type: model.ResponseGreeting, Response: greetingResponse}
	case model.IntentQuestion:
		return s.answerQuestion(ctx, req)
	case model.IntentFollowUp:
		resp, spec := s.refineDisplayed(ctx, req)
		s.logResult(req.Query, intent, spec, resp, started)
		return resp
	default:
		spec := s.extractor.ExtractSearch(ctx, req.Query)
		resp := s.freshSearch(ctx, req.Query, spec)
		s.logResult(req.Query, intent, spec, resp, started)
		return resp
	}
}

// answerQuestion grounds a free-form question in the displayed products.
func (s *ConversationService) answerQuestion(ctx context.Context, req *model.RecommendRequest) *model.RecommendResponse {
	log.Println("Answering question about displayed products")
	answer, err := s.aiClient.AnswerProductQuestion(ctx, formatProductContext(req.LastProducts), req.Query)
	if err != nil || strings.TrimSpace(answer) == "" {
		log.Printf("Q&A failed: %v", err)
		return &model.RecommendResponse{Type: model.ResponseAnswer, Response: rephraseResponse}
	}
	return &model.RecommendResponse{Type: model.ResponseAnswer, Response: strings.TrimSpace(answer)}
}

// refineDisplayed narrows the previously shown products without a new
// index query.
func (s *ConversationService) refineDisplayed(ctx context.Context, req *model.RecommendRequest) (*model.RecommendResponse, *model.FilterSpec) {
	log.Println("Filtering displayed products")
	spec := s.extractor.ExtractFollowUp(ctx, req.Query, formatProductListBrief(req.LastProducts))

	kept := s.filter.Apply(req.LastProducts, spec)
	if len(kept) == 0 {
		return &model.RecommendResponse{Type: model.ResponseNoResults, Response: noResultsForSpec(spec)}, spec
	}
	if len(kept) > s.maxResults {
		kept = kept[:s.maxResults]
	}

	msg := fmt.Sprintf("I found %d product matching your criteria:", len(kept))
	if len(kept) > 1 {
		msg = fmt.Sprintf("I found %d products matching your criteria:", len(kept))
	}
	return &model.RecommendResponse{
		Type:            model.ResponseProducts,
		Response:        msg,
		Recommendations: kept,
	}, spec
}

// freshSearch runs the full retrieval pipeline for a new search.
func (s *ConversationService) freshSearch(ctx context.Context, query string, spec *model.FilterSpec) *model.RecommendResponse {
	log.Println("New product search")

	category := spec.CategoryOrOther()
	if category == model.CategorySports || category == model.CategoryElectronics {
		log.Printf("Category %q is not furniture", category)
		return &model.RecommendResponse{Type: model.ResponseNoResults, Response: notFurnitureResponse}
	}

	candidates, poolSize, err := s.retriever.Retrieve(ctx, query, spec)
	if err != nil {
		log.Printf("Retrieval failed: %v", err)
		return &model.RecommendResponse{Type: model.ResponseNoResults, Response: emptyIndexResponse}
	}
	if poolSize == 0 {
		return &model.RecommendResponse{Type: model.ResponseNoResults, Response: emptyIndexResponse}
	}

	log.Printf("Final matches: %d products", len(candidates))
	selected := s.selector.Select(candidates)
	if len(selected) == 0 {
		return &model.RecommendResponse{Type: model.ResponseNoResults, Response: noMatchesResponse}
	}

	recommendations := make([]model.Product, len(selected))
	for i, m := range selected {
		recommendations[i] = s.productFromMatch(m)
	}

	var msg string
	switch len(recommendations) {
	case 1:
		msg = "I found the perfect match:"
	case 2:
		msg = "I found 2 great options:"
	default:
		msg = fmt.Sprintf("I found %d products:", len(recommendations))
	}
	return &model.RecommendResponse{
		Type:            model.ResponseProducts,
		Response:        msg,
		Recommendations: recommendations,
	}
}

// productFromMatch turns an index hit into a display product, attaching
// the generated summary and the rounded similarity score.
func (s *ConversationService) productFromMatch(m model.CandidateMatch) model.Product {
	features, bestFor := GenerateSummary(m.Metadata["title"], m.Metadata["description"])

	title := m.Metadata["title"]
	if title == "" {
		title = "Product"
	}
	price := m.Metadata["price"]
	if price == "" {
		price = "N/A"
	}
	score := math.Round(m.Score*1000) / 1000

	return model.Product{
		ID:          m.ID,
		Title:       title,
		Image:       metaPtr(m.Metadata, "image"),
		Price:       &price,
		Brand:       metaPtr(m.Metadata, "brand"),
		Material:    metaPtr(m.Metadata, "material"),
		Color:       metaPtr(m.Metadata, "color"),
		Dimensions:  metaPtr(m.Metadata, "dimensions"),
		KeyFeatures: features,
		BestFor:     &bestFor,
		Score:       &score,
	}
}

// logResult records the served search off the request path. Failures
// are logged and dropped.
func (s *ConversationService) logResult(query string, intent model.Intent, spec *model.FilterSpec, resp *model.RecommendResponse, started time.Time) {
	if s.logger == nil {
		return
	}
	searchID := uuid.New().String()
	resp.SearchID = searchID

	ids := make([]string, len(resp.Recommendations))
	for i, p := range resp.Recommendations {
		ids[i] = p.ID
	}
	elapsed := int(time.Since(started).Milliseconds())

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.logger.LogSearch(ctx, searchID, query, intent, spec, len(ids), ids, elapsed); err != nil {
			log.Printf("Failed to log search %s: %v", searchID, err)
		}
	}()
}

// noResultsForSpec names the constraints that eliminated every
// displayed product.
func noResultsForSpec(spec *model.FilterSpec) string {
	var parts []string
	if spec.PriceMax != nil {
		parts = append(parts, fmt.Sprintf("under $%.0f", *spec.PriceMax))
	}
	if spec.Color != nil {
		parts = append(parts, "in "+*spec.Color)
	}
	if spec.Material != nil {
		parts = append(parts, "made of "+*spec.Material)
	}
	if spec.Size != nil {
		parts = append(parts, "in "+*spec.Size+" size")
	}
	if spec.Brand != nil {
		parts = append(parts, "from "+*spec.Brand)
	}
	if len(parts) == 0 {
		return genericNoResults
	}
	return "None of the displayed products are " + strings.Join(parts, " and ") + ". Try adjusting your filters."
}

// formatProductContext renders displayed products with full details for
// question answering.
func formatProductContext(products []model.Product) string {
	if len(products) == 0 {
		return "No products displayed."
	}
	var b strings.Builder
	for i, p := range products {
		fmt.Fprintf(&b, "\n\nProduct #%d:", i+1)
		fmt.Fprintf(&b, "\n  Title: %s", p.Title)
		fmt.Fprintf(&b, "\n  Price: %s", deref(p.Price))
		if p.Brand != nil {
			fmt.Fprintf(&b, "\n  Brand: %s", *p.Brand)
		}
		if p.Dimensions != nil {
			fmt.Fprintf(&b, "\n  Dimensions: %s", *p.Dimensions)
		}
		if p.Material != nil {
			fmt.Fprintf(&b, "\n  Material: %s", *p.Material)
		}
		if p.Color != nil {
			fmt.Fprintf(&b, "\n  Color: %s", *p.Color)
		}
		if len(p.KeyFeatures) > 0 {
			fmt.Fprintf(&b, "\n  Features: %s", strings.Join(p.KeyFeatures, ", "))
		}
	}
	return b.String()
}

// formatProductListBrief renders one line per displayed product for
// filter parsing.
func formatProductListBrief(products []model.Product) string {
	lines := make([]string, len(products))
	for i, p := range products {
		lines[i] = fmt.Sprintf("%d. %s - %s", i+1, p.Title, deref(p.Price))
	}
	return strings.Join(lines, "\n")
}
