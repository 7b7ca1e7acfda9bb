package graph

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/search"
)

func TestInferCategory(t *testing.T) {
	builder := NewBuilder(DefaultVocabulary())

	tests := []struct {
		name      string
		predicate string
		want      common.EdgeCategory
	}{
		{"modal marker", "trebuie să oprească", common.CategoryModal},
		{"modal negated", "nu este permis", common.CategoryModal},
		{"single preposition", "în", common.CategoryPrepositional},
		{"preposition with continuation is not prepositional", "în interiorul", common.CategorySVO},
		{"plain verb", "depășește", common.CategorySVO},
		{"case folded", "TREBUIE", common.CategoryModal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := builder.inferCategory(tt.predicate); got != tt.want {
				t.Errorf("inferCategory(%q) = %q, want %q", tt.predicate, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyFoldsDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Limită de viteză", "limita de viteza"},
		{"  Circulație  ", "circulatie"},
		{"șosea", "sosea"},
		{"alcool", "alcool"},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.in); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Concept keys must come out in the same form query terms do, or the
// concept is unreachable at search time.
func TestConceptKeysMatchNormalizedQueryTerms(t *testing.T) {
	builder := NewBuilder(DefaultVocabulary())
	doc := common.Document{ID: 3, Concepts: []string{"viteză", "circulația pietonilor"}}

	nodes, _ := builder.BuildDocument(doc)
	stored := make(map[string]bool)
	for _, node := range nodes {
		if node.Label == common.LabelConcept {
			stored[node.Key] = true
		}
	}

	for _, term := range search.NormalizeTerms("viteza circulația") {
		found := false
		for key := range stored {
			if strings.Contains(key, term) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("query term %q matches no stored concept key in %v", term, stored)
		}
	}
}

func TestBuildDocument(t *testing.T) {
	builder := NewBuilder(DefaultVocabulary())

	doc := common.Document{
		ID:                  7,
		ArticleHeader:       "Art. 35",
		ParagraphIdentifier: "(1)",
		Text:                "Conducătorul de vehicul trebuie să acorde prioritate pietonilor.",
		Concepts:            []string{"prioritate pietoni"},
		Entities:            []common.Entity{{Text: "DRPCIV", Type: "ORG"}},
		Triples: []common.Triple{
			{Subject: "Conducătorul", Predicate: "trebuie să acorde", Object: "prioritate"},
		},
	}

	nodes, edges := builder.BuildDocument(doc)

	wantKeys := map[string]common.NodeLabel{
		"para:7":             common.LabelParagraph,
		"prioritate pietoni": common.LabelConcept,
		"drpciv":             common.LabelEntity,
		"conducatorul":       common.LabelTerm,
		"prioritate":         common.LabelTerm,
	}
	if len(nodes) != len(wantKeys) {
		t.Fatalf("got %d nodes, want %d", len(nodes), len(wantKeys))
	}
	for _, node := range nodes {
		want, ok := wantKeys[node.Key]
		if !ok {
			t.Errorf("unexpected node key %q", node.Key)
			continue
		}
		if node.Label != want {
			t.Errorf("node %q label = %q, want %q", node.Key, node.Label, want)
		}
	}

	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	if edges[0].RelationLabel != common.RelationHasConcept || edges[0].TargetKey != "prioritate pietoni" {
		t.Errorf("first edge = %+v, want HAS_CONCEPT to prioritate pietoni", edges[0])
	}
	if edges[1].RelationLabel != common.RelationMentionsEntity || edges[1].TargetKey != "drpciv" {
		t.Errorf("second edge = %+v, want MENTIONS_ENTITY to drpciv", edges[1])
	}
	if edges[2].Category != common.CategoryModal {
		t.Errorf("triple edge category = %q, want modal", edges[2].Category)
	}
	if got := edges[2].Properties["normalized"]; got != "obligation" {
		t.Errorf("triple edge normalized = %q, want obligation", got)
	}
	for i, edge := range edges {
		if edge.DocumentID != 7 {
			t.Errorf("edge %d document id = %d, want 7", i, edge.DocumentID)
		}
	}
}

func TestAccumulatorLabelPrecedence(t *testing.T) {
	acc := newGraphAccumulator()

	acc.merge([]common.Node{{Key: "politia rutieră", Label: common.LabelTerm}}, nil)
	acc.merge([]common.Node{{Key: "politia rutieră", Label: common.LabelEntity,
		Properties: map[string]string{"entity_type": "ORG"}}}, nil)
	acc.merge([]common.Node{{Key: "politia rutieră", Label: common.LabelConcept}}, nil)

	nodes := acc.sortedNodes()
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Label != common.LabelEntity {
		t.Errorf("label = %q, want Entity after upgrade", nodes[0].Label)
	}
	if nodes[0].Properties["entity_type"] != "ORG" {
		t.Errorf("entity_type property lost on merge: %+v", nodes[0].Properties)
	}
}

func TestAccumulatorKeepsEdgeMultiset(t *testing.T) {
	acc := newGraphAccumulator()
	edge := common.Edge{SourceKey: "a", TargetKey: "b", RelationLabel: "depășește", Category: common.CategorySVO}

	acc.merge(nil, []common.Edge{edge})
	acc.merge(nil, []common.Edge{edge})

	if len(acc.edges) != 2 {
		t.Errorf("got %d edges, want 2 (no dedup across occurrences)", len(acc.edges))
	}
}

func TestBuildDeterministicOrder(t *testing.T) {
	builder := NewBuilder(DefaultVocabulary())
	docs := []common.Document{
		{ID: 1, Concepts: []string{"viteză", "alcool"}},
		{ID: 2, Concepts: []string{"alcool", "pietoni"}},
	}

	build := func(input []common.Document) []common.Node {
		acc := newGraphAccumulator()
		for _, doc := range input {
			nodes, edges := builder.BuildDocument(doc)
			acc.merge(nodes, edges)
		}
		return acc.sortedNodes()
	}

	first := build(docs)
	second := build([]common.Document{docs[1], docs[0]})

	keys := func(nodes []common.Node) []string {
		out := make([]string, len(nodes))
		for i, node := range nodes {
			out[i] = node.Key
		}
		return out
	}
	if !reflect.DeepEqual(keys(first), keys(second)) {
		t.Errorf("node order depends on document order: %v vs %v", keys(first), keys(second))
	}
}
