package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresSource reads documents from a table with columns
// id (any type castable to text), tokens (text[], nullable) and
// text (text, nullable).
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT id::text, tokens, text FROM %s ORDER BY id",
		pq.QuoteIdentifier(s.table),
	)
}

func (s *PostgresSource) Each(ctx context.Context, fn func(Document) error) error {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return fmt.Errorf("querying %s: %w", s.table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			doc    Document
			tokens pq.StringArray
			text   sql.NullString
		)
		if err := rows.Scan(&doc.ID, &tokens, &text); err != nil {
			return fmt.Errorf("scanning %s row: %w", s.table, err)
		}
		doc.Tokens = []string(tokens)
		doc.Text = text.String
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating %s: %w", s.table, err)
	}
	return nil
}
