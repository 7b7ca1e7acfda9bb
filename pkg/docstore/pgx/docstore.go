package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lexatlas/lexatlas/pkg/common"
	"github.com/lexatlas/lexatlas/pkg/docstore"
	"github.com/lexatlas/lexatlas/pkg/logger"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// DocumentDBStore implements docstore.Store on PostgreSQL.
type DocumentDBStore struct {
	conn pgxIConn
}

// NewDocumentDBStore creates a document store using an existing connection
// or pool.
func NewDocumentDBStore(conn pgxIConn) *DocumentDBStore {
	return &DocumentDBStore{conn: conn}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(docstore.ErrStoreUnavailable, err))
}

// GetMetadata returns the identifying fields and text of a document.
func (s *DocumentDBStore) GetMetadata(ctx context.Context, id int64) (common.Document, bool, error) {
	var doc common.Document
	err := s.conn.QueryRow(ctx,
		`SELECT id, article_header, paragraph_identifier, text
		 FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.ArticleHeader, &doc.ParagraphIdentifier, &doc.Text)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return common.Document{}, false, nil
	}
	if err != nil {
		return common.Document{}, false, storeErr("get metadata", err)
	}
	return doc, true, nil
}

// GetDocument returns the full record including decoded annotations.
func (s *DocumentDBStore) GetDocument(ctx context.Context, id int64) (common.Document, bool, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, article_header, paragraph_identifier, text, concepts, entities, triples
		 FROM documents WHERE id = $1`, id)
	if err != nil {
		return common.Document{}, false, storeErr("get document", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return common.Document{}, false, storeErr("get document", err)
		}
		return common.Document{}, false, nil
	}
	doc, err := scanDocument(rows)
	if err != nil {
		return common.Document{}, false, storeErr("get document", err)
	}
	return doc, true, nil
}

// GetConcepts returns the concept list for a document. A malformed payload
// degrades to an empty list for this one row.
func (s *DocumentDBStore) GetConcepts(ctx context.Context, id int64) ([]string, error) {
	var raw []byte
	err := s.conn.QueryRow(ctx,
		`SELECT concepts FROM documents WHERE id = $1`, id,
	).Scan(&raw)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get concepts", err)
	}

	concepts, ok := docstore.DecodeConcepts(raw)
	if !ok {
		logger.Warn("[DocStore] Malformed concepts payload, using empty list", "document_id", id)
	}
	return concepts, nil
}

// ListArticleHeaders returns the distinct article headers in corpus order.
func (s *DocumentDBStore) ListArticleHeaders(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT article_header FROM documents
		 GROUP BY article_header ORDER BY MIN(id)`)
	if err != nil {
		return nil, storeErr("list article headers", err)
	}
	defer rows.Close()

	headers := make([]string, 0)
	for rows.Next() {
		var header string
		if err := rows.Scan(&header); err != nil {
			return nil, storeErr("list article headers", err)
		}
		headers = append(headers, header)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list article headers", err)
	}
	return headers, nil
}

// ListParagraphIdentifiers returns the paragraph identifiers under an article.
func (s *DocumentDBStore) ListParagraphIdentifiers(ctx context.Context, articleHeader string) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT paragraph_identifier FROM documents
		 WHERE article_header = $1 ORDER BY id`, articleHeader)
	if err != nil {
		return nil, storeErr("list paragraph identifiers", err)
	}
	defer rows.Close()

	identifiers := make([]string, 0)
	for rows.Next() {
		var identifier string
		if err := rows.Scan(&identifier); err != nil {
			return nil, storeErr("list paragraph identifiers", err)
		}
		identifiers = append(identifiers, identifier)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list paragraph identifiers", err)
	}
	return identifiers, nil
}

// GetContent returns the documents under an article header, optionally
// restricted to one paragraph identifier.
func (s *DocumentDBStore) GetContent(ctx context.Context, articleHeader, paragraphIdentifier string) ([]common.Document, error) {
	query := `SELECT id, article_header, paragraph_identifier, text
		 FROM documents WHERE article_header = $1 ORDER BY id`
	args := []any{articleHeader}
	if paragraphIdentifier != "" {
		query = `SELECT id, article_header, paragraph_identifier, text
		 FROM documents WHERE article_header = $1 AND paragraph_identifier = $2 ORDER BY id`
		args = append(args, paragraphIdentifier)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr("get content", err)
	}
	defer rows.Close()

	docs := make([]common.Document, 0)
	for rows.Next() {
		var doc common.Document
		if err := rows.Scan(&doc.ID, &doc.ArticleHeader, &doc.ParagraphIdentifier, &doc.Text); err != nil {
			return nil, storeErr("get content", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get content", err)
	}
	return docs, nil
}

// ListDocuments returns the full corpus snapshot ordered by document id.
func (s *DocumentDBStore) ListDocuments(ctx context.Context) ([]common.Document, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, article_header, paragraph_identifier, text, concepts, entities, triples
		 FROM documents ORDER BY id`)
	if err != nil {
		return nil, storeErr("list documents", err)
	}
	defer rows.Close()

	docs := make([]common.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, storeErr("list documents", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list documents", err)
	}
	return docs, nil
}

// scanDocument reads one full document row. Malformed annotation payloads
// are logged and replaced with empty values; they never fail the row.
func scanDocument(row pgxv5.Rows) (common.Document, error) {
	var (
		doc                         common.Document
		rawConcepts, rawEnt, rawTri []byte
	)
	if err := row.Scan(
		&doc.ID, &doc.ArticleHeader, &doc.ParagraphIdentifier, &doc.Text,
		&rawConcepts, &rawEnt, &rawTri,
	); err != nil {
		return common.Document{}, err
	}

	var ok bool
	if doc.Concepts, ok = docstore.DecodeConcepts(rawConcepts); !ok {
		logger.Warn("[DocStore] Malformed concepts payload, using empty list", "document_id", doc.ID)
	}
	if doc.Entities, ok = docstore.DecodeEntities(rawEnt); !ok {
		logger.Warn("[DocStore] Malformed entities payload, using empty list", "document_id", doc.ID)
	}
	if doc.Triples, ok = docstore.DecodeTriples(rawTri); !ok {
		logger.Warn("[DocStore] Malformed triples payload, using empty list", "document_id", doc.ID)
	}
	return doc, nil
}
