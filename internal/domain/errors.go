package domain

import "errors"

var (
	// ErrMalformedTime is returned when a reminder time is not in H:MM / HH:MM form
	ErrMalformedTime = errors.New("malformed time, expected HH:MM")
	// ErrIncompleteAnswer is returned when the user answered fewer lines than words asked
	ErrIncompleteAnswer = errors.New("incomplete answer")
	// ErrDuplicateWord is returned when the word is already in the user's dictionary
	ErrDuplicateWord = errors.New("word already exists")
	// ErrWordNotFound is returned when a word to delete does not exist
	ErrWordNotFound = errors.New("word not found")
	// ErrEmptyInput is returned for blank text
	ErrEmptyInput = errors.New("empty input")
)
