package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLRepo implements Repo on database/sql. Queries use $n placeholders,
// which both the Postgres and SQLite drivers accept.
type SQLRepo struct {
	DB *sql.DB
}

const documentColumns = `id, owner_id, title, summary, category, department, type, original_url, content, source_key, upload_date`

// Save inserts a new document.
func (r *SQLRepo) Save(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    owner_id,
    title,
    summary,
    category,
    department,
    type,
    original_url,
    content,
    source_key,
    upload_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Summary,
		doc.Category,
		doc.Department,
		doc.Type,
		nullString(doc.OriginalURL),
		doc.Content,
		nullString(doc.SourceKey),
		doc.UploadDate,
	)
	return err
}

// Get fetches a document by ID for an owner.
func (r *SQLRepo) Get(ctx context.Context, ownerID, id string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1 AND id = $2
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner lists documents newest first with optional label/type filters.
func (r *SQLRepo) ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]Document, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where := []string{"owner_id = $1"}
	args := []any{ownerID}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("category", f.Category)
	add("department", f.Department)
	add("type", f.Type)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT %s
FROM documents
WHERE %s
ORDER BY upload_date DESC
LIMIT $%d OFFSET $%d`, documentColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document owned by ownerID.
func (r *SQLRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var originalURL, sourceKey sql.NullString
	if err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Summary,
		&doc.Category,
		&doc.Department,
		&doc.Type,
		&originalURL,
		&doc.Content,
		&sourceKey,
		&doc.UploadDate,
	); err != nil {
		return Document{}, err
	}
	doc.OriginalURL = originalURL.String
	doc.SourceKey = sourceKey.String
	doc.UploadDate = doc.UploadDate.UTC()
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*SQLRepo)(nil)
