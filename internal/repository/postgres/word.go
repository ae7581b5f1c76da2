package postgres

import (
	"context"
	"database/sql"
	"errors"

	"wordreminder/internal/domain"
)

// WordRepo implements repository.WordRepository
type WordRepo struct {
	db *sql.DB
}

// NewWordRepo creates a new word repository
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

// AddWord saves a word without translation
func (r *WordRepo) AddWord(ctx context.Context, userID int64, word string) error {
	query := `
		INSERT INTO user_words (user_id, word, translation)
		VALUES ($1, $2, NULL)
	`
	_, err := r.db.ExecContext(ctx, query, userID, word)
	return err
}

// WordExists checks whether the user already has the word
func (r *WordRepo) WordExists(ctx context.Context, userID int64, word string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_words WHERE user_id = $1 AND word = $2)`
	err := r.db.QueryRowContext(ctx, query, userID, word).Scan(&exists)
	return exists, err
}

// UpdateTranslation sets the translation of a word
func (r *WordRepo) UpdateTranslation(ctx context.Context, userID int64, word, translation string) error {
	query := `
		UPDATE user_words
		SET translation = $3
		WHERE user_id = $1 AND word = $2
	`
	_, err := r.db.ExecContext(ctx, query, userID, word, translation)
	return err
}

// GetWordWithoutTranslation returns the oldest untranslated word of the user
func (r *WordRepo) GetWordWithoutTranslation(ctx context.Context, userID int64) (string, bool, error) {
	var word string
	query := `
		SELECT word
		FROM user_words
		WHERE user_id = $1 AND translation IS NULL
		ORDER BY created_at
		LIMIT 1
	`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&word)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return word, true, nil
}

// GetUserDictionary returns all words of the user in insertion order
func (r *WordRepo) GetUserDictionary(ctx context.Context, userID int64) ([]domain.Word, error) {
	query := `
		SELECT user_id, word, translation, created_at
		FROM user_words
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []domain.Word
	for rows.Next() {
		var w domain.Word
		var translation sql.NullString
		if err := rows.Scan(&w.UserID, &w.Word, &translation, &w.CreatedAt); err != nil {
			return nil, err
		}
		if translation.Valid {
			w.Translation = &translation.String
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

// DeleteWord removes a word, reporting whether a row was deleted
func (r *WordRepo) DeleteWord(ctx context.Context, userID int64, word string) (bool, error) {
	query := `DELETE FROM user_words WHERE user_id = $1 AND word = $2`
	res, err := r.db.ExecContext(ctx, query, userID, word)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
