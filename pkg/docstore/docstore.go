package docstore

import (
	"context"
	"errors"

	"github.com/lexatlas/lexatlas/pkg/common"
)

var (
	// ErrStoreUnavailable is returned when the document store cannot be reached
	// or errors mid-query. It is distinct from an empty (not found) result.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// Store provides read-only access to the segmented legal corpus and the
// annotations the upstream pipeline attached to it. Writes happen in the
// excluded population pipeline; this core never mutates documents.
type Store interface {
	// GetMetadata returns the identifying fields and text of a document,
	// without decoding the annotation payloads. The second return value is
	// false when no document has the given id.
	GetMetadata(ctx context.Context, id int64) (common.Document, bool, error)

	// GetDocument returns the full record including concepts, entities and
	// triples. Malformed annotation payloads degrade to empty values.
	GetDocument(ctx context.Context, id int64) (common.Document, bool, error)

	// GetConcepts returns the precomputed concept list for a document.
	GetConcepts(ctx context.Context, id int64) ([]string, error)

	// ListArticleHeaders returns the distinct article headers in corpus order.
	ListArticleHeaders(ctx context.Context) ([]string, error)

	// ListParagraphIdentifiers returns the paragraph identifiers under an
	// article header.
	ListParagraphIdentifiers(ctx context.Context, articleHeader string) ([]string, error)

	// GetContent returns the documents under an article header, restricted to
	// one paragraph when paragraphIdentifier is non-empty.
	GetContent(ctx context.Context, articleHeader, paragraphIdentifier string) ([]common.Document, error)

	// ListDocuments returns the full corpus snapshot ordered by document id,
	// with annotation payloads decoded. Used by the offline graph build.
	ListDocuments(ctx context.Context) ([]common.Document, error)
}
