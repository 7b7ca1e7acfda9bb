package graph

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/search"
)

const textPreviewRunes = 240

// Builder derives typed knowledge-graph nodes and edges from annotated
// documents. Node identity is exact match on the trimmed, case- and
// diacritic-folded key; there is no fuzzy merging.
type Builder struct {
	vocab Vocabulary
}

// NewBuilder creates a builder with the given relation vocabulary.
func NewBuilder(vocab Vocabulary) *Builder {
	return &Builder{vocab: vocab}
}

// ParagraphKey returns the graph key of the paragraph node for a document.
func ParagraphKey(documentID int64) string {
	return "para:" + strconv.FormatInt(documentID, 10)
}

// NormalizeKey canonicalizes a phrase or entity text into a node key.
// Diacritics fold away so stored keys line up with normalized query
// terms ("viteză" and "viteza" are the same concept).
func NormalizeKey(value string) string {
	return search.FoldDiacritics(strings.ToLower(strings.TrimSpace(value)))
}

// BuildDocument derives the nodes and edges contributed by one document.
// The transform is pure; merging across documents happens in the
// accumulator so builds stay order-independent.
func (b *Builder) BuildDocument(doc common.Document) ([]common.Node, []common.Edge) {
	paragraphKey := ParagraphKey(doc.ID)
	nodes := []common.Node{{
		Key:   paragraphKey,
		Label: common.LabelParagraph,
		Properties: map[string]string{
			"article_header":       doc.ArticleHeader,
			"paragraph_identifier": doc.ParagraphIdentifier,
			"text_preview":         util.SanitizePostgresText(util.TruncateRunes(doc.Text, textPreviewRunes)),
		},
	}}
	edges := make([]common.Edge, 0, len(doc.Concepts)+len(doc.Entities)+len(doc.Triples))

	for _, concept := range doc.Concepts {
		key := NormalizeKey(concept)
		if key == "" {
			continue
		}
		nodes = append(nodes, common.Node{Key: key, Label: common.LabelConcept})
		edges = append(edges, common.Edge{
			SourceKey:     paragraphKey,
			TargetKey:     key,
			RelationLabel: common.RelationHasConcept,
			Category:      common.CategoryStructural,
			DocumentID:    doc.ID,
		})
	}

	for _, entity := range doc.Entities {
		key := NormalizeKey(entity.Text)
		if key == "" {
			continue
		}
		node := common.Node{Key: key, Label: common.LabelEntity}
		if entity.Type != "" {
			node.Properties = map[string]string{"entity_type": entity.Type}
		}
		nodes = append(nodes, node)
		edges = append(edges, common.Edge{
			SourceKey:     paragraphKey,
			TargetKey:     key,
			RelationLabel: common.RelationMentionsEntity,
			Category:      common.CategoryStructural,
			DocumentID:    doc.ID,
		})
	}

	for _, triple := range doc.Triples {
		subjectKey := NormalizeKey(triple.Subject)
		objectKey := NormalizeKey(triple.Object)
		if subjectKey == "" || objectKey == "" {
			continue
		}
		nodes = append(nodes,
			common.Node{Key: subjectKey, Label: common.LabelTerm},
			common.Node{Key: objectKey, Label: common.LabelTerm},
		)

		category := b.inferCategory(triple.Predicate)
		edge := common.Edge{
			SourceKey:     subjectKey,
			TargetKey:     objectKey,
			RelationLabel: triple.Predicate,
			Category:      category,
			DocumentID:    doc.ID,
		}
		switch category {
		case common.CategoryModal:
			edge.Properties = map[string]string{"normalized": NormalizeModal(triple.Predicate)}
		case common.CategoryPrepositional:
			edge.Properties = map[string]string{"normalized": NormalizePreposition(triple.Predicate)}
		}
		edges = append(edges, edge)
	}

	return nodes, edges
}

// inferCategory classifies a relation predicate. Modal markers match as
// prefixes so inflected continuations still count; prepositions only
// match a predicate that is exactly that single token. The vocabulary
// carries diacritics, so the predicate is compared unfolded.
func (b *Builder) inferCategory(predicate string) common.EdgeCategory {
	normalized := strings.ToLower(strings.TrimSpace(predicate))
	for _, marker := range b.vocab.ModalMarkers {
		if strings.HasPrefix(normalized, marker) {
			return common.CategoryModal
		}
	}
	for _, preposition := range b.vocab.Prepositions {
		if normalized == preposition {
			return common.CategoryPrepositional
		}
	}
	return common.CategorySVO
}

// BuildAll streams the full document snapshot through the builder and
// merges the results. Documents that fail to load are logged and skipped;
// the output is deterministically ordered so identical snapshots produce
// isomorphic graphs.
func (b *Builder) BuildAll(ctx context.Context, store docstore.Store) ([]common.Node, []common.Edge, error) {
	docs, err := store.ListDocuments(ctx)
	if err != nil {
		return nil, nil, err
	}

	acc := newGraphAccumulator()
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		nodes, edges := b.BuildDocument(doc)
		acc.merge(nodes, edges)
	}

	logger.Info("[GraphBuilder] Graph built",
		"documents", len(docs), "nodes", len(acc.nodes), "edges", len(acc.edges))
	return acc.sortedNodes(), acc.edges, nil
}

// graphAccumulator merges per-document output into one graph. Node merges
// apply the label precedence upgrade rule; edges accumulate as a multiset.
type graphAccumulator struct {
	nodes map[string]common.Node
	edges []common.Edge
}

func newGraphAccumulator() *graphAccumulator {
	return &graphAccumulator{nodes: make(map[string]common.Node)}
}

func (a *graphAccumulator) merge(nodes []common.Node, edges []common.Edge) {
	for _, node := range nodes {
		existing, ok := a.nodes[node.Key]
		if !ok {
			a.nodes[node.Key] = node
			continue
		}
		if node.Label.Precedence() > existing.Label.Precedence() {
			existing.Label = node.Label
		}
		for key, value := range node.Properties {
			if existing.Properties == nil {
				existing.Properties = make(map[string]string)
			}
			if _, present := existing.Properties[key]; !present {
				existing.Properties[key] = value
			}
		}
		a.nodes[node.Key] = existing
	}
	a.edges = append(a.edges, edges...)
}

func (a *graphAccumulator) sortedNodes() []common.Node {
	nodes := make([]common.Node, 0, len(a.nodes))
	for _, node := range a.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Key < nodes[j].Key })
	return nodes
}
