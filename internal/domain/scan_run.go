package domain

import "time"

// ScanRun records one finished mailbox scan for the user's scan history.
type ScanRun struct {
	ID         string
	UserID     string
	Outcome    string
	Candidates int
	Created    int
	Duplicates int
	Unmatched  int
	Failed     int
	Error      *string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r ScanRun) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
