package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfusionSetStore persists confusion-set groups in Postgres. The service
// reads groups once at startup to build the registry; writes happen out of
// band (seeding, operator tooling).
type ConfusionSetStore struct {
	db *pgxpool.Pool
}

func NewConfusionSetStore(db *pgxpool.Pool) *ConfusionSetStore {
	return &ConfusionSetStore{db: db}
}

// ListGroups returns every declared group in declaration order.
func (s *ConfusionSetStore) ListGroups(ctx context.Context) ([][]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT words FROM confusion_sets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list confusion sets: %w", err)
	}
	defer rows.Close()

	var groups [][]string
	for rows.Next() {
		var words []string
		if err := rows.Scan(&words); err != nil {
			return nil, fmt.Errorf("scan confusion set row: %w", err)
		}
		groups = append(groups, words)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("confusion set rows: %w", err)
	}
	return groups, nil
}

// CreateGroup declares a new confusion set and returns its id.
func (s *ConfusionSetStore) CreateGroup(ctx context.Context, words []string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO confusion_sets (words) VALUES ($1) RETURNING id`,
		words,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create confusion set: %w", err)
	}
	return id, nil
}
