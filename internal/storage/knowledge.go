package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrIndexUnavailable signals that the full-text index cannot serve queries
// on this connection. Callers are expected to fall back to substring search.
var ErrIndexUnavailable = errors.New("full-text index unavailable")

// ScoredEntry pairs a knowledge entry with its full-text relevance score.
// bm25 scores are lower-is-better.
type ScoredEntry struct {
	Entry KnowledgeEntry
	Score float64
}

// KnowledgeRepository handles knowledge entry persistence and search.
type KnowledgeRepository struct {
	db *DB
}

// NewKnowledgeRepository creates a new knowledge repository.
func NewKnowledgeRepository(db *DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// SearchIndexed runs a relevance-ranked full-text query across title, content
// and tags, joined back to the canonical entries. Returns ErrIndexUnavailable
// when the connected driver has no FTS5 index.
func (r *KnowledgeRepository) SearchIndexed(ctx context.Context, expression string, limit int) ([]ScoredEntry, error) {
	if r.db.Driver != DriverSQLite || !r.db.FTSAvailable() {
		return nil, ErrIndexUnavailable
	}

	query := `
		SELECT ki.id, ki.title, ki.content, ki.source_url, ki.tags, bm25(knowledge_fts) AS score
		FROM knowledge_fts JOIN knowledge_items ki ON knowledge_fts.rowid = ki.id
		WHERE knowledge_fts MATCH ? ORDER BY score LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, expression, limit)
	if err != nil {
		return nil, fmt.Errorf("fts query: %w", err)
	}
	defer rows.Close()

	var results []ScoredEntry
	for rows.Next() {
		var (
			entry     KnowledgeEntry
			sourceURL sql.NullString
			tags      sql.NullString
			score     float64
		)
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Content, &sourceURL, &tags, &score); err != nil {
			return nil, fmt.Errorf("scan fts row: %w", err)
		}
		entry.SourceURL = sourceURL.String
		entry.Tags = tags.String
		results = append(results, ScoredEntry{Entry: entry, Score: score})
	}
	return results, rows.Err()
}

// FilterSubstring runs a case-insensitive substring search. When keywords are
// supplied each one is matched against title, content and tags; otherwise the
// raw query is matched against content alone. Results are ordered by id to
// keep the fallback path deterministic.
func (r *KnowledgeRepository) FilterSubstring(ctx context.Context, keywords []string, rawQuery string, limit int) ([]KnowledgeEntry, error) {
	var (
		conditions []string
		args       []interface{}
	)

	n := 0
	next := func() string {
		n++
		return r.db.placeholder(n)
	}

	if len(keywords) > 0 {
		for _, kw := range keywords {
			pat := "%" + strings.ToLower(kw) + "%"
			for _, col := range []string{"title", "content", "tags"} {
				conditions = append(conditions, fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE %s", col, next()))
				args = append(args, pat)
			}
		}
	} else {
		conditions = append(conditions, fmt.Sprintf("LOWER(content) LIKE %s", next()))
		args = append(args, "%"+strings.ToLower(rawQuery)+"%")
	}

	query := fmt.Sprintf(`
		SELECT id, title, content, source_url, tags FROM knowledge_items
		WHERE %s ORDER BY id LIMIT %s
	`, strings.Join(conditions, " OR "), next())
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("substring query: %w", err)
	}
	defer rows.Close()

	var entries []KnowledgeEntry
	for rows.Next() {
		var (
			entry     KnowledgeEntry
			sourceURL sql.NullString
			tags      sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Title, &entry.Content, &sourceURL, &tags); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.SourceURL = sourceURL.String
		entry.Tags = tags.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetByTitle retrieves an entry by exact title.
func (r *KnowledgeRepository) GetByTitle(ctx context.Context, title string) (*KnowledgeEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, title, content, source_url, tags FROM knowledge_items
		WHERE title = %s
	`, r.db.placeholder(1))

	var (
		entry     KnowledgeEntry
		sourceURL sql.NullString
		tags      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, title).Scan(&entry.ID, &entry.Title, &entry.Content, &sourceURL, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	entry.SourceURL = sourceURL.String
	entry.Tags = tags.String
	return &entry, nil
}

// Upsert inserts an entry or, when one with the same title exists, updates
// its content, source URL and tags. Returns the entry id.
func (r *KnowledgeRepository) Upsert(ctx context.Context, entry *KnowledgeEntry) (int64, error) {
	existing, err := r.GetByTitle(ctx, entry.Title)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	sourceURL := nullable(entry.SourceURL)
	tags := nullable(entry.Tags)

	if existing != nil {
		query := fmt.Sprintf(`
			UPDATE knowledge_items SET content = %s, source_url = %s, tags = %s WHERE id = %s
		`, r.db.placeholder(1), r.db.placeholder(2), r.db.placeholder(3), r.db.placeholder(4))
		if _, err := r.db.ExecContext(ctx, query, entry.Content, sourceURL, tags, existing.ID); err != nil {
			return 0, fmt.Errorf("update entry: %w", err)
		}
		return existing.ID, nil
	}

	if r.db.Driver == DriverPostgres {
		query := `
			INSERT INTO knowledge_items (title, content, source_url, tags)
			VALUES ($1, $2, $3, $4) RETURNING id
		`
		var id int64
		if err := r.db.QueryRowContext(ctx, query, entry.Title, entry.Content, sourceURL, tags).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert entry: %w", err)
		}
		return id, nil
	}

	query := `
		INSERT INTO knowledge_items (title, content, source_url, tags)
		VALUES (?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query, entry.Title, entry.Content, sourceURL, tags)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return res.LastInsertId()
}

// Count returns the number of knowledge entries.
func (r *KnowledgeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM knowledge_items").Scan(&count)
	return count, err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
