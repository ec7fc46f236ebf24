package words

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/elum-utils/gatekeeper/models"
)

// SQLStorage is a generic SQL word storage implementation.
type SQLStorage struct {
	db    *sql.DB
	table string
}

// NewSQLStorage creates an adapter over *sql.DB.
func NewSQLStorage(db *sql.DB, table string) (*SQLStorage, error) {
	if db == nil {
		return nil, errors.New("words: db is nil")
	}
	if strings.TrimSpace(table) == "" {
		table = "sensitive_words"
	}
	return &SQLStorage{db: db, table: table}, nil
}

// EnsureSchema creates the table if missing.
func (s *SQLStorage) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (word TEXT PRIMARY KEY, tier INTEGER NOT NULL)`, s.table)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *SQLStorage) AddWord(ctx context.Context, word string, tier models.RiskTier) error {
	q := fmt.Sprintf(`INSERT INTO %s (word, tier) VALUES (?, ?)`, s.table)
	_, err := s.db.ExecContext(ctx, q, word, int(tier))
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "duplicate") || strings.Contains(lower, "unique") {
		uq := fmt.Sprintf(`UPDATE %s SET tier = ? WHERE word = ?`, s.table)
		_, uerr := s.db.ExecContext(ctx, uq, int(tier), word)
		return uerr
	}
	return err
}

func (s *SQLStorage) RemoveWord(ctx context.Context, word string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE word = ?`, s.table)
	_, err := s.db.ExecContext(ctx, q, word)
	return err
}

func (s *SQLStorage) GetWords(ctx context.Context) (map[string]models.RiskTier, error) {
	q := fmt.Sprintf(`SELECT word, tier FROM %s`, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.RiskTier, 256)
	for rows.Next() {
		var word string
		var tier int
		if scanErr := rows.Scan(&word, &tier); scanErr != nil {
			return nil, scanErr
		}
		out[word] = models.RiskTier(tier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStorage) WordExists(ctx context.Context, word string) (bool, error) {
	q := fmt.Sprintf(`SELECT 1 FROM %s WHERE word = ? LIMIT 1`, s.table)
	var v int
	err := s.db.QueryRowContext(ctx, q, word).Scan(&v)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
