package scanner

import (
	"fmt"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// ErrorKind classifies a per-message failure. None of them abort a scan.
type ErrorKind string

const (
	MessageFetchError ErrorKind = "fetch"
	DecodeError       ErrorKind = "decode"
	PersistError      ErrorKind = "persist"
)

type MessageError struct {
	MessageID string
	Kind      ErrorKind
	Err       error
}

func (e MessageError) Error() string {
	return fmt.Sprintf("message %s: %s: %v", e.MessageID, e.Kind, e.Err)
}

func (e MessageError) Unwrap() error { return e.Err }

// Result summarizes one scan. Created is in creation order, oldest mail first.
type Result struct {
	Created    []domain.Notification
	Errors     []MessageError
	Candidates int
	Duplicates int
	Unmatched  int
}
