package services

import "errors"

var (
	// ErrChatNotFound is returned when a chat session is missing or not owned by the caller
	ErrChatNotFound = errors.New("chat session not found")
	// ErrMemoryNotFound is returned when a memory is missing or not owned by the caller
	ErrMemoryNotFound = errors.New("memory not found")
	// ErrActivityNotFound is returned for an unknown closure activity
	ErrActivityNotFound = errors.New("closure activity not found")
	// ErrJournalNotFound is returned for an unknown journal entry
	ErrJournalNotFound = errors.New("journal entry not found")
	// ErrUnsupportedFile is returned when an upload is not a .txt export
	ErrUnsupportedFile = errors.New("only .txt files are supported")
	// ErrInvalidEncoding is returned when an upload is not UTF-8 text
	ErrInvalidEncoding = errors.New("file is not valid UTF-8 text")
	// ErrUnsupportedFormat is returned for an unknown export format
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNoContactExists is returned when the date already has an entry
	ErrNoContactExists = errors.New("entry already exists for this date")
	// ErrValidation marks bad client input; the wrapped message is safe to show
	ErrValidation = errors.New("invalid input")
)
