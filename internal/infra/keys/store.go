package keys

import (
	"context"
	"errors"
	"strings"

	"genconsole/internal/domain"
	"genconsole/internal/infra"
	"genconsole/internal/sqlinline"
)

// Store persists the ordered API key list. Only the key values are stored;
// cooldown state lives in the in-memory pool and is intentionally transient.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// List returns the key values in insertion order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListAPIKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, strings.TrimSpace(key))
	}
	return out, rows.Err()
}

// Add appends a key. Duplicate values are rejected with ErrDuplicateKey.
func (s *Store) Add(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is required")
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QInsertAPIKey, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateKey
	}
	return nil
}

// Remove deletes a key by value. Removing an unknown key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteAPIKey, strings.TrimSpace(key))
	return err
}
