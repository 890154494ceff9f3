package model

import "time"

// SyncJob is a snapshot of records queued for the document store.
type SyncJob struct {
	ID         string
	Records    []Record
	EnqueuedAt time.Time
}
