package domain

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")

	// Scan-level failures. Each aborts the whole scan.
	ErrAuth              = errors.New("mailbox authorization failed")
	ErrNoWatchTargets    = errors.New("no watch addresses configured")
	ErrSearchUnavailable = errors.New("mailbox search unavailable")
	ErrScanInProgress    = errors.New("mailbox scan already in progress")
)
