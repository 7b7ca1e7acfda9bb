package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/graphstore"
)

type fakeGraphStore struct {
	matches    []graphstore.ConceptMatch
	paragraphs map[string][]int64
	err        error
}

func (f *fakeGraphStore) ReplaceGraph(context.Context, []common.Node, []common.Edge) error {
	return nil
}

func (f *fakeGraphStore) SearchConcepts(_ context.Context, terms []string, limit int) ([]graphstore.ConceptMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func (f *fakeGraphStore) ParagraphsForConcepts(_ context.Context, conceptKeys []string) (map[string][]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.paragraphs, nil
}

func (f *fakeGraphStore) OutgoingEdges(context.Context, string) ([]common.Edge, error) {
	return nil, nil
}

func (f *fakeGraphStore) IncomingEdges(context.Context, string) ([]common.Edge, error) {
	return nil, nil
}

func (f *fakeGraphStore) SimplePaths(context.Context, string, string, int, int) ([]graphstore.Path, error) {
	return nil, nil
}

func (f *fakeGraphStore) NodeCount(context.Context) (int64, error) { return 0, nil }
func (f *fakeGraphStore) EdgeCount(context.Context) (int64, error) { return 0, nil }

// matchingGraphStore resolves terms against stored node keys by token
// equality, approximating the real store's full-text match instead of
// returning matches by fiat.
type matchingGraphStore struct {
	fakeGraphStore
	keys []string
}

func (f *matchingGraphStore) SearchConcepts(_ context.Context, terms []string, limit int) ([]graphstore.ConceptMatch, error) {
	var matches []graphstore.ConceptMatch
	for _, key := range f.keys {
		tokens := strings.Fields(key)
		matched := false
		for _, term := range terms {
			for _, token := range tokens {
				if token == term {
					matched = true
				}
			}
		}
		if matched {
			matches = append(matches, graphstore.ConceptMatch{NodeKey: key, Score: 1.0})
		}
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

type fakeDocStore struct {
	docs map[int64]common.Document
}

func (f *fakeDocStore) GetMetadata(_ context.Context, id int64) (common.Document, bool, error) {
	doc, ok := f.docs[id]
	return doc, ok, nil
}

func (f *fakeDocStore) GetDocument(_ context.Context, id int64) (common.Document, bool, error) {
	doc, ok := f.docs[id]
	return doc, ok, nil
}

func (f *fakeDocStore) GetConcepts(_ context.Context, id int64) ([]string, error) {
	return f.docs[id].Concepts, nil
}

func (f *fakeDocStore) ListArticleHeaders(context.Context) ([]string, error) { return nil, nil }

func (f *fakeDocStore) ListParagraphIdentifiers(context.Context, string) ([]string, error) {
	return nil, nil
}

func (f *fakeDocStore) GetContent(context.Context, string, string) ([]common.Document, error) {
	return nil, nil
}

func (f *fakeDocStore) ListDocuments(context.Context) ([]common.Document, error) {
	out := make([]common.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, doc)
	}
	return out, nil
}

func TestGraphSearchAggregatesScores(t *testing.T) {
	graphStore := &fakeGraphStore{
		matches: []graphstore.ConceptMatch{
			{NodeKey: "viteza legala", Score: 0.8},
			{NodeKey: "limita viteza", Score: 0.5},
		},
		paragraphs: map[string][]int64{
			"viteza legala": {1, 2},
			"limita viteza": {2},
		},
	}
	docs := &fakeDocStore{docs: map[int64]common.Document{
		1: {ID: 1, ArticleHeader: "Art. 49"},
		2: {ID: 2, ArticleHeader: "Art. 50"},
	}}

	results, err := NewSearcher(graphStore, docs).Search(context.Background(), "limita de viteza", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Document 2 accumulates both concepts: 0.8 + 0.5.
	if results[0].Document.ID != 2 || results[0].Score != 1.3 {
		t.Errorf("top result = id %d score %v, want id 2 score 1.3",
			results[0].Document.ID, results[0].Score)
	}
	if results[1].Document.ID != 1 || results[1].Score != 0.8 {
		t.Errorf("second result = id %d score %v, want id 1 score 0.8",
			results[1].Document.ID, results[1].Score)
	}
}

// Builder-produced keys must stay reachable through term matching,
// whether or not the user types the diacritics.
func TestGraphSearchFindsDiacriticConcepts(t *testing.T) {
	builder := NewBuilder(DefaultVocabulary())
	doc := common.Document{ID: 5, ArticleHeader: "Art. 121", Concepts: []string{"limită de viteză"}}
	nodes, edges := builder.BuildDocument(doc)

	store := &matchingGraphStore{}
	store.paragraphs = map[string][]int64{}
	for _, node := range nodes {
		if node.Label == common.LabelConcept {
			store.keys = append(store.keys, node.Key)
		}
	}
	for _, edge := range edges {
		if edge.RelationLabel == common.RelationHasConcept {
			store.paragraphs[edge.TargetKey] = append(store.paragraphs[edge.TargetKey], edge.DocumentID)
		}
	}
	docs := &fakeDocStore{docs: map[int64]common.Document{5: {ID: 5, ArticleHeader: "Art. 121"}}}

	for _, query := range []string{"limită de viteză", "limita de viteza"} {
		results, err := NewSearcher(store, docs).Search(context.Background(), query, 5)
		if err != nil {
			t.Fatalf("query %q: unexpected error: %v", query, err)
		}
		if len(results) != 1 || results[0].Document.ID != 5 {
			t.Errorf("query %q: got %+v, want document 5", query, results)
		}
	}
}

func TestGraphSearchTieBreaksByDocumentID(t *testing.T) {
	graphStore := &fakeGraphStore{
		matches:    []graphstore.ConceptMatch{{NodeKey: "pietoni", Score: 0.4}},
		paragraphs: map[string][]int64{"pietoni": {9, 3}},
	}
	docs := &fakeDocStore{docs: map[int64]common.Document{
		3: {ID: 3}, 9: {ID: 9},
	}}

	results, err := NewSearcher(graphStore, docs).Search(context.Background(), "pietoni trecere", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 || results[0].Document.ID != 3 || results[1].Document.ID != 9 {
		t.Fatalf("tie-break order wrong: %+v", results)
	}
}

func TestGraphSearchEmptyTerms(t *testing.T) {
	graphStore := &fakeGraphStore{err: errors.New("must not be called")}
	docs := &fakeDocStore{}

	results, err := NewSearcher(graphStore, docs).Search(context.Background(), "de la în", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 for all-stopword query", len(results))
	}
}

func TestGraphSearchSkipsMissingDocuments(t *testing.T) {
	graphStore := &fakeGraphStore{
		matches:    []graphstore.ConceptMatch{{NodeKey: "alcool", Score: 1.0}},
		paragraphs: map[string][]int64{"alcool": {1, 2}},
	}
	docs := &fakeDocStore{docs: map[int64]common.Document{1: {ID: 1}}}

	results, err := NewSearcher(graphStore, docs).Search(context.Background(), "alcoolemie", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != 1 {
		t.Fatalf("expected only the resolvable document, got %+v", results)
	}
}

func TestGraphSearchLimitsToK(t *testing.T) {
	graphStore := &fakeGraphStore{
		matches:    []graphstore.ConceptMatch{{NodeKey: "vehicul", Score: 1.0}},
		paragraphs: map[string][]int64{"vehicul": {1, 2, 3, 4}},
	}
	docs := &fakeDocStore{docs: map[int64]common.Document{
		1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3}, 4: {ID: 4},
	}}

	results, err := NewSearcher(graphStore, docs).Search(context.Background(), "vehicul", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}
