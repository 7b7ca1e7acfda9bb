package common

// Document represents one addressable segment of the legal corpus, together
// with the annotations the upstream language pipeline attached to it.
// Documents are immutable once produced; this core only reads them.
type Document struct {
	ID                  int64    `json:"id"`
	ArticleHeader       string   `json:"article"`
	ParagraphIdentifier string   `json:"paragraph"`
	Text                string   `json:"text"`
	Concepts            []string `json:"concepts,omitempty"`
	Entities            []Entity `json:"entities,omitempty"`
	Triples             []Triple `json:"triples,omitempty"`
}

// Entity is a named entity recognized in a document's text.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Triple is a (subject, predicate, object) relation extracted from a
// sentence by the upstream dependency pipeline.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// NodeLabel classifies a graph node. Labels form a precedence order
// (Entity > Concept > Term); when a key is seen again under a different
// role its label may only be upgraded, never downgraded.
type NodeLabel string

const (
	LabelUnset     NodeLabel = ""
	LabelTerm      NodeLabel = "Term"
	LabelConcept   NodeLabel = "Concept"
	LabelEntity    NodeLabel = "Entity"
	LabelParagraph NodeLabel = "Paragraph"
)

// Precedence returns the rank of the label in the upgrade order.
// Paragraph nodes use a dedicated key space and never compete with
// phrase-keyed nodes, but rank highest for completeness.
func (l NodeLabel) Precedence() int {
	switch l {
	case LabelParagraph:
		return 4
	case LabelEntity:
		return 3
	case LabelConcept:
		return 2
	case LabelTerm:
		return 1
	default:
		return 0
	}
}

// Node is a typed knowledge-graph node. Key is the normalized phrase or
// entity text, or "para:<id>" for paragraph nodes. Properties is a bounded
// open extension map for pass-through metadata (article header, entity
// type, text snippet).
type Node struct {
	Key        string            `json:"key"`
	Label      NodeLabel         `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
}

// EdgeCategory classifies a graph edge by how its relation was derived.
type EdgeCategory string

const (
	CategoryModal         EdgeCategory = "modal"
	CategoryPrepositional EdgeCategory = "prepositional"
	CategorySVO           EdgeCategory = "svo"
	CategoryStructural    EdgeCategory = "structural"
)

// Structural relation labels attached to Paragraph nodes.
const (
	RelationHasConcept     = "HAS_CONCEPT"
	RelationMentionsEntity = "MENTIONS_ENTITY"
)

// Edge is a directed, labeled knowledge-graph edge. Multiple edges between
// the same pair are allowed, one per occurrence; the builder performs no
// deduplication or weighting across occurrences.
type Edge struct {
	SourceKey     string            `json:"source"`
	TargetKey     string            `json:"target"`
	RelationLabel string            `json:"relation"`
	Category      EdgeCategory      `json:"category"`
	DocumentID    int64             `json:"document_id"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// Candidate is a document proposed by one retrieval branch.
// Rank is the 0-based position in that branch's ordering.
type Candidate struct {
	DocumentID int64   `json:"id"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// SemanticResult is a reranked candidate from the vector branch, annotated
// with its score components and the concepts that matched the query.
type SemanticResult struct {
	Document        Document `json:"document"`
	SemanticScore   float64  `json:"semantic_score"`
	OverlapScore    float64  `json:"overlap_score"`
	FinalScore      float64  `json:"final_score"`
	MatchedConcepts []string `json:"matched_concepts"`
}

// GraphResult is a document surfaced by the concept-graph branch together
// with its aggregated concept match score.
type GraphResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// FusedResult is the output of reciprocal rank fusion across branches.
// FoundBy lists the branch tags that contributed to the score.
type FusedResult struct {
	Document Document `json:"document"`
	RRFScore float64  `json:"rrf_score"`
	FoundBy  []string `json:"found_by"`
}
