package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"concierge/internal/model"
)

// VectorIndex is the similarity-search surface the retriever consumes.
// Implemented by repository.PostgresRepository.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, topK int) ([]model.CandidateMatch, error)
}

// categorySearchPhrases replaces sparse category keywords with richer
// search text. Embedding models conflate short furniture terms with
// noise; the fixed phrases anchor the query in the right neighborhood.
var categorySearchPhrases = map[string]string{
	model.CategorySofa:    "sofa couch sectional living room seating",
	model.CategoryBed:     "bed frame bedroom sleeping",
	model.CategoryChair:   "chair seating dining office",
	model.CategoryTable:   "table desk surface",
	model.CategoryOttoman: "ottoman footstool",
	model.CategoryStorage: "dresser nightstand storage cabinet",
}

// CandidateRetriever issues one vector-similarity query per request and
// reduces the candidate pool through classification and metadata
// filtering, preserving the index's descending similarity order.
type CandidateRetriever struct {
	index      VectorIndex
	aiClient   ChainClient
	classifier *ProductClassifier
	filter     *FilterEngine
	poolSize   int
	workers    int
	padWidth   int
}

// NewCandidateRetriever creates a new candidate retriever. padWidth is
// the all-zero suffix appended to text embeddings so query vectors match
// the index's combined text+image width.
func NewCandidateRetriever(
	index VectorIndex,
	aiClient ChainClient,
	classifier *ProductClassifier,
	filter *FilterEngine,
	poolSize, workers, padWidth int,
) *CandidateRetriever {
	return &CandidateRetriever{
		index:      index,
		aiClient:   aiClient,
		classifier: classifier,
		filter:     filter,
		poolSize:   poolSize,
		workers:    workers,
		padWidth:   padWidth,
	}
}

// Retrieve runs a fresh search for the utterance under the extracted
// spec. The returned candidates are classified, category-checked and
// metadata-filtered, best match first. The second return is the raw
// index pool size, letting callers distinguish an empty index result
// from candidates that were all filtered away.
func (r *CandidateRetriever) Retrieve(ctx context.Context, utterance string, spec *model.FilterSpec) ([]model.CandidateMatch, int, error) {
	category := spec.CategoryOrOther()
	searchText := utterance
	if phrase, ok := categorySearchPhrases[category]; ok {
		searchText = phrase
	}

	log.Printf("Searching: %q (category: %s)", searchText, category)

	vector, err := r.aiClient.Embed(ctx, searchText)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to embed search text: %w", err)
	}
	vector = append(vector, make([]float32, r.padWidth)...)

	candidates, err := r.index.Search(ctx, vector, r.poolSize)
	if err != nil {
		return nil, 0, fmt.Errorf("index query failed: %w", err)
	}
	log.Printf("Index returned %d candidates", len(candidates))

	matched := r.classifyAndMatch(ctx, candidates, category)

	// Fresh-search metadata filters: material, color, price only.
	// Brand and size apply to follow-up refinements, not retrieval.
	metaSpec := &model.FilterSpec{
		Material: spec.Material,
		Color:    spec.Color,
		PriceMax: spec.PriceMax,
	}
	return r.applyMetadataFilters(matched, metaSpec), len(candidates), nil
}

// classifyAndMatch classifies every candidate concurrently under the
// worker limit, then discards candidates whose category mismatches a
// non-"other" request. Input order is preserved.
func (r *CandidateRetriever) classifyAndMatch(ctx context.Context, candidates []model.CandidateMatch, requested string) []model.CandidateMatch {
	categories := make([]string, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}
	for i := range candidates {
		i := i
		g.Go(func() error {
			categories[i] = r.classifier.Classify(gctx, candidates[i].Title())
			return nil
		})
	}
	// classification never returns an error; it degrades to "other"
	_ = g.Wait()

	matched := make([]model.CandidateMatch, 0, len(candidates))
	for i, candidate := range candidates {
		if requested != model.CategoryOther && categories[i] != requested {
			log.Printf("Discarded %.60q: classified %s, requested %s", candidate.Title(), categories[i], requested)
			continue
		}
		matched = append(matched, candidate)
	}
	return matched
}

// applyMetadataFilters runs the filter engine over candidate metadata,
// keeping the survivors in their ranked order.
func (r *CandidateRetriever) applyMetadataFilters(candidates []model.CandidateMatch, spec *model.FilterSpec) []model.CandidateMatch {
	if spec.Empty() {
		return candidates
	}

	products := make([]model.Product, len(candidates))
	for i, c := range candidates {
		products[i] = candidateShim(c)
	}

	kept := make([]model.CandidateMatch, 0, len(candidates))
	for i, d := range r.filter.Evaluate(products, spec) {
		if d.Keep {
			kept = append(kept, candidates[i])
		} else {
			log.Printf("Filtered out: %.60s (%v)", d.Product.Title, d.Reasons)
		}
	}
	return kept
}

// candidateShim exposes candidate metadata in product form so the
// filter engine can evaluate it.
func candidateShim(c model.CandidateMatch) model.Product {
	return model.Product{
		ID:       c.ID,
		Title:    c.Metadata["title"],
		Price:    metaPtr(c.Metadata, "price"),
		Brand:    metaPtr(c.Metadata, "brand"),
		Material: metaPtr(c.Metadata, "material"),
		Color:    metaPtr(c.Metadata, "color"),
	}
}

func metaPtr(meta map[string]string, key string) *string {
	if v, ok := meta[key]; ok && v != "" {
		return &v
	}
	return nil
}
