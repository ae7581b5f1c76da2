package domain

import "time"

// Word represents a dictionary entry. Translation is nil until the user supplies it.
type Word struct {
	UserID      int64
	Word        string
	Translation *string
	CreatedAt   time.Time
}

// Translated reports whether the entry already has a translation
func (w Word) Translated() bool {
	return w.Translation != nil
}

// Pair returns the entry as a word-translation pair (empty translation if missing)
func (w Word) Pair() WordPair {
	p := WordPair{Word: w.Word}
	if w.Translation != nil {
		p.Translation = *w.Translation
	}
	return p
}

// WordPair is a word with its translation, as queued for a quiz
type WordPair struct {
	Word        string
	Translation string
}
