package storage

import (
	"time"

	"github.com/google/uuid"
)

// ScanRun is one recorded scan.
type ScanRun struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Files      int       `json:"files"`
	Skipped    int       `json:"skipped"`
}

// NewScanRun starts a run rooted at root with a fresh UUID.
func NewScanRun(root string) *ScanRun {
	return &ScanRun{
		ID:        uuid.NewString(),
		Root:      root,
		StartedAt: time.Now().UTC(),
	}
}

// MarkerRecord is a marker stored under a run.
type MarkerRecord struct {
	Path string   `json:"path"`
	Line int      `json:"line"`
	Name string   `json:"name"`
	Args []string `json:"args"`
}
