package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"wordreminder/internal/domain"
)

// ChainRepo implements repository.ChainRepository.
// Instants are stored as unix seconds, the backlog as two parallel text arrays.
type ChainRepo struct {
	db *sql.DB
}

// NewChainRepo creates a new chain checkpoint repository
func NewChainRepo(db *sql.DB) *ChainRepo {
	return &ChainRepo{db: db}
}

// Save upserts the checkpoint of user's running chain
func (r *ChainRepo) Save(ctx context.Context, cp domain.ChainCheckpoint) error {
	fireAt := make(pq.Int64Array, len(cp.Timeline))
	for i, t := range cp.Timeline {
		fireAt[i] = t.Unix()
	}

	words := make(pq.StringArray, len(cp.Backlog))
	translations := make(pq.StringArray, len(cp.Backlog))
	for i, p := range cp.Backlog {
		words[i] = p.Word
		translations[i] = p.Translation
	}

	query := `
		INSERT INTO reminder_chains (user_id, chain_id, fire_at, next_stage, backlog_words, backlog_translations, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET chain_id = EXCLUDED.chain_id,
		              fire_at = EXCLUDED.fire_at,
		              next_stage = EXCLUDED.next_stage,
		              backlog_words = EXCLUDED.backlog_words,
		              backlog_translations = EXCLUDED.backlog_translations,
		              updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, cp.UserID, cp.ChainID, fireAt, cp.NextStage, words, translations)
	return err
}

// Delete removes the checkpoint of the given chain. A checkpoint already
// taken over by a newer chain of the user is left alone.
func (r *ChainRepo) Delete(ctx context.Context, userID int64, chainID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminder_chains WHERE user_id = $1 AND chain_id = $2`, userID, chainID)
	return err
}

// List returns all stored checkpoints
func (r *ChainRepo) List(ctx context.Context) ([]domain.ChainCheckpoint, error) {
	query := `
		SELECT user_id, chain_id, fire_at, next_stage, backlog_words, backlog_translations, updated_at
		FROM reminder_chains
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkpoints []domain.ChainCheckpoint
	for rows.Next() {
		var cp domain.ChainCheckpoint
		var fireAt pq.Int64Array
		var words, translations pq.StringArray
		if err := rows.Scan(&cp.UserID, &cp.ChainID, &fireAt, &cp.NextStage, &words, &translations, &cp.UpdatedAt); err != nil {
			return nil, err
		}
		if len(words) != len(translations) {
			return nil, fmt.Errorf("checkpoint for user %d: %d words but %d translations", cp.UserID, len(words), len(translations))
		}

		cp.Timeline = make(domain.Timeline, len(fireAt))
		for i, sec := range fireAt {
			cp.Timeline[i] = time.Unix(sec, 0)
		}
		cp.Backlog = make([]domain.WordPair, len(words))
		for i := range words {
			cp.Backlog[i] = domain.WordPair{Word: words[i], Translation: translations[i]}
		}
		checkpoints = append(checkpoints, cp)
	}

	return checkpoints, rows.Err()
}

// DeleteStale removes checkpoints that are finished or whose last
// instant is older than before. Returns the number of removed rows.
func (r *ChainRepo) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM reminder_chains
		WHERE next_stage >= cardinality(fire_at)
			OR fire_at[cardinality(fire_at)] < $1
	`
	res, err := r.db.ExecContext(ctx, query, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
