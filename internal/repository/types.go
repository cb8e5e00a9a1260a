package repository

import (
	"database/sql"
	"time"
)

type Repo struct {
	db *sql.DB
}

// Run is one recorded acquisition.
type Run struct {
	ID           string
	Reference    string
	Title        string
	Profile      string
	UsedFallback bool
	Succeeded    int
	Failed       int
	BatchError   string
	StartedAt    time.Time
	FinishedAt   time.Time
}

func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

type RunItem struct {
	RunID    string
	Position int
	Label    string
	Status   string
	Profile  string
	Paths    []string
	Error    string
}
