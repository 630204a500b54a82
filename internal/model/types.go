// Package model defines shared data structures.
package model

import "time"

// Config defines game settings resolved from flags, env and the config file.
type Config struct {
	InitialDelay   time.Duration
	DelayStep      time.Duration
	FPS            int
	SampleInterval time.Duration
	LiveWindow     int
	CorpusPath     string
	User           string
}

// RunSeries is the ordered list of per-tick speed samples of one run.
type RunSeries []int

// User is a registered player. The guest user has an empty password hash.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// IsGuest reports whether the user is the shared guest account.
func (u User) IsGuest() bool {
	return u.Username == GuestUsername
}

// GuestUsername names the account that needs no password.
const GuestUsername = "guest"

// RunResult is the snapshot taken when a run ends.
type RunResult struct {
	Score      int
	Wrong      int
	StoryIndex int // story the run started on
	Series     RunSeries
}

// ScoreRecord is a persisted run. Series holds one unsigned byte per sample.
type ScoreRecord struct {
	ID        int64
	RunID     string
	UserID    int64
	Series    []byte
	Score     int
	Wrong     int
	CreatedAt time.Time
}
