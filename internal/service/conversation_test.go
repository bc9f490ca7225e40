package service

import (
	"context"
	"testing"
	"time"

	"concierge/internal/config"
	"concierge/internal/model"
)

type loggedSearch struct {
	searchID    string
	query       string
	intent      model.Intent
	resultCount int
}

type fakeLogger struct {
	logged chan loggedSearch
}

func (f *fakeLogger) LogSearch(ctx context.Context, searchID, query string, intent model.Intent, spec *model.FilterSpec, resultCount int, productIDs []string, responseTimeMs int) error {
	f.logged <- loggedSearch{searchID: searchID, query: query, intent: intent, resultCount: resultCount}
	return nil
}

func newTestConversation(chain ChainClient, index VectorIndex, logger SearchLogger) *ConversationService {
	filter := NewFilterEngine()
	classifier := NewProductClassifier(chain, 0)
	retriever := NewCandidateRetriever(index, chain, classifier, filter, 20, 2, 4)
	selector := NewResultSelector(&config.SelectionConfig{PerfectScore: 0.90, PerfectGap: 0.05}, 3)
	router := NewIntentRouter(chain, 6)
	extractor := NewAttributeExtractor(chain)
	return NewConversationService(router, extractor, retriever, selector, filter, chain, logger, 3)
}

func TestConversation_Greeting(t *testing.T) {
	chain := &fakeChain{enabled: true, intent: "GREETING"}
	svc := newTestConversation(chain, &fakeIndex{}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{Query: "hi"})
	if resp.Type != model.ResponseGreeting {
		t.Fatalf("Type = %s, want greeting", resp.Type)
	}
	if resp.Response != greetingResponse {
		t.Errorf("Response = %q", resp.Response)
	}
	if len(resp.Recommendations) != 0 {
		t.Error("greeting must not carry recommendations")
	}
}

func TestConversation_NonFurnitureCategory(t *testing.T) {
	chain := &fakeChain{
		enabled:    true,
		intent:     "SEARCH",
		searchJSON: `{"category": "sports"}`,
	}
	svc := newTestConversation(chain, &fakeIndex{}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{Query: "dumbbells"})
	if resp.Type != model.ResponseNoResults {
		t.Fatalf("Type = %s, want no_results", resp.Type)
	}
	if resp.Response != notFurnitureResponse {
		t.Errorf("Response = %q", resp.Response)
	}
}

func TestConversation_SearchReturnsSummarizedProducts(t *testing.T) {
	match := model.CandidateMatch{
		ID:    "p1",
		Score: 0.8765,
		Metadata: map[string]string{
			"title":       "3 Seater Leather Sofa",
			"price":       "$449.99",
			"brand":       "FANYE",
			"description": "upholstered comfort",
		},
	}
	chain := &fakeChain{
		enabled:    true,
		intent:     "SEARCH",
		searchJSON: `{"category": "sofa"}`,
		embedding:  []float32{0.1},
	}
	svc := newTestConversation(chain, &fakeIndex{matches: []model.CandidateMatch{match}}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{Query: "find sofas"})
	if resp.Type != model.ResponseProducts {
		t.Fatalf("Type = %s, want products (%q)", resp.Type, resp.Response)
	}
	if resp.Response != "I found the perfect match:" {
		t.Errorf("Response = %q", resp.Response)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(resp.Recommendations))
	}

	p := resp.Recommendations[0]
	if p.ID != "p1" || p.Title != "3 Seater Leather Sofa" {
		t.Errorf("unexpected product %+v", p)
	}
	if p.Score == nil || *p.Score != 0.877 {
		t.Errorf("Score = %v, want 0.877 (rounded to 3 places)", p.Score)
	}
	if len(p.KeyFeatures) == 0 {
		t.Error("expected generated key features")
	}
	if p.BestFor == nil || *p.BestFor != "Perfect for living room relaxation" {
		t.Errorf("BestFor = %v", p.BestFor)
	}
}

func TestConversation_EmptyIndex(t *testing.T) {
	chain := &fakeChain{
		enabled:    true,
		intent:     "SEARCH",
		searchJSON: `{"category": "sofa"}`,
		embedding:  []float32{0.1},
	}
	svc := newTestConversation(chain, &fakeIndex{}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{Query: "find sofas"})
	if resp.Type != model.ResponseNoResults {
		t.Fatalf("Type = %s, want no_results", resp.Type)
	}
	if resp.Response != emptyIndexResponse {
		t.Errorf("Response = %q", resp.Response)
	}
}

func TestConversation_AllCandidatesFilteredAway(t *testing.T) {
	chain := &fakeChain{
		enabled:    true,
		intent:     "SEARCH",
		searchJSON: `{"category": "sofa"}`,
		embedding:  []float32{0.1},
	}
	// the index only has chairs, every candidate is discarded
	index := &fakeIndex{matches: []model.CandidateMatch{
		candidate("1", "Office Chair", 0.9),
	}}
	svc := newTestConversation(chain, index, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{Query: "find sofas"})
	if resp.Type != model.ResponseNoResults {
		t.Fatalf("Type = %s, want no_results", resp.Type)
	}
	if resp.Response != noMatchesResponse {
		t.Errorf("Response = %q", resp.Response)
	}
}

func TestConversation_FollowUpFilters(t *testing.T) {
	displayed := []model.Product{
		{ID: "1", Title: "Red Sofa", Price: strPtr("$120.00"), Color: strPtr("red")},
		{ID: "2", Title: "Blue Sofa", Price: strPtr("$90.00"), Color: strPtr("blue")},
	}
	chain := &fakeChain{
		enabled:    true,
		intent:     "FOLLOW_UP",
		followJSON: `{"price_max": 100}`,
	}
	svc := newTestConversation(chain, &fakeIndex{}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{
		Query:        "under $100",
		LastProducts: displayed,
	})
	if resp.Type != model.ResponseProducts {
		t.Fatalf("Type = %s, want products (%q)", resp.Type, resp.Response)
	}
	if resp.Response != "I found 1 product matching your criteria:" {
		t.Errorf("Response = %q", resp.Response)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].ID != "2" {
		t.Errorf("Recommendations = %+v", resp.Recommendations)
	}
}

func TestConversation_FollowUpNoMatchesNamesConstraints(t *testing.T) {
	displayed := []model.Product{
		{ID: "1", Title: "Red Sofa", Price: strPtr("$120.00"), Color: strPtr("red")},
	}
	chain := &fakeChain{
		enabled:    true,
		intent:     "FOLLOW_UP",
		followJSON: `{"price_max": 50, "color": "blue"}`,
	}
	svc := newTestConversation(chain, &fakeIndex{}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{
		Query:        "blue ones under $50",
		LastProducts: displayed,
	})
	if resp.Type != model.ResponseNoResults {
		t.Fatalf("Type = %s, want no_results", resp.Type)
	}
	want := "None of the displayed products are under $50 and in blue. Try adjusting your filters."
	if resp.Response != want {
		t.Errorf("Response = %q, want %q", resp.Response, want)
	}
}

func TestConversation_QuestionAnswered(t *testing.T) {
	displayed := []model.Product{{ID: "1", Title: "Red Sofa", Price: strPtr("$120.00")}}
	chain := &fakeChain{
		enabled: true,
		intent:  "QUESTION",
		answer:  "The first one is the cheapest.",
	}
	svc := newTestConversation(chain, &fakeIndex{}, nil)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{
		Query:        "which is cheapest?",
		LastProducts: displayed,
	})
	if resp.Type != model.ResponseAnswer {
		t.Fatalf("Type = %s, want answer", resp.Type)
	}
	if resp.Response != "The first one is the cheapest." {
		t.Errorf("Response = %q", resp.Response)
	}
}

func TestConversation_SearchLogged(t *testing.T) {
	chain := &fakeChain{
		enabled:    true,
		intent:     "SEARCH",
		searchJSON: `{"category": "sofa"}`,
		embedding:  []float32{0.1},
	}
	index := &fakeIndex{matches: []model.CandidateMatch{
		candidate("1", "Nice Sofa", 0.9),
	}}
	logger := &fakeLogger{logged: make(chan loggedSearch, 1)}
	svc := newTestConversation(chain, index, logger)

	resp := svc.Recommend(context.Background(), &model.RecommendRequest{Query: "find sofas"})
	if resp.SearchID == "" {
		t.Fatal("expected a search_id on logged responses")
	}

	select {
	case entry := <-logger.logged:
		if entry.searchID != resp.SearchID {
			t.Errorf("logged search_id = %s, want %s", entry.searchID, resp.SearchID)
		}
		if entry.query != "find sofas" || entry.intent != model.IntentSearch {
			t.Errorf("logged entry = %+v", entry)
		}
		if entry.resultCount != 1 {
			t.Errorf("logged result count = %d, want 1", entry.resultCount)
		}
	case <-time.After(time.Second):
		t.Fatal("search was never logged")
	}
}
