// Package tracking correlates submission tracking ids with the case number
// that eventually completes them.
package tracking

import (
	"hash/fnv"
	"sync"
	"time"

	"reclamations/internal/models"
)

const shardCount = 32

type entry struct {
	caseNumber string
	updatedAt  time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// Store is a sharded in-memory map. Every operation on one tracking id
// holds only that id's shard lock. Entries live for the process lifetime.
type Store struct {
	shards [shardCount]*shard
	now    func() time.Time
}

func NewStore() *Store {
	s := &Store{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return s
}

func (s *Store) shardFor(trackingID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingID))
	return s.shards[h.Sum32()%shardCount]
}

// MarkPending creates the entry or refreshes its timestamp. A completed
// entry keeps its status and case number.
func (s *Store) MarkPending(trackingID string) {
	sh := s.shardFor(trackingID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[trackingID]
	if !ok {
		sh.entries[trackingID] = &entry{updatedAt: s.now()}
		return
	}
	if e.caseNumber == "" {
		e.updatedAt = s.now()
	}
}

// Complete moves the entry to completed, creating it if needed. It
// reports whether this call performed the transition; an already completed
// entry keeps its first case number.
func (s *Store) Complete(trackingID, caseNumber string) bool {
	if caseNumber == "" {
		return false
	}
	sh := s.shardFor(trackingID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[trackingID]
	if !ok {
		sh.entries[trackingID] = &entry{caseNumber: caseNumber, updatedAt: s.now()}
		return true
	}
	if e.caseNumber != "" {
		return false
	}
	e.caseNumber = caseNumber
	e.updatedAt = s.now()
	return true
}

// Get returns the status for trackingID; ok is false when it is unknown.
func (s *Store) Get(trackingID string) (models.SubmissionStatus, bool) {
	sh := s.shardFor(trackingID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[trackingID]
	if !ok {
		return models.SubmissionStatus{}, false
	}
	status := models.SubmissionStatus{
		TrackingID: trackingID,
		Status:     models.StatusPending,
		CaseNumber: e.caseNumber,
		UpdatedAt:  e.updatedAt,
	}
	if e.caseNumber != "" {
		status.Status = models.StatusCompleted
	}
	return status, true
}

// Len counts tracked ids across all shards.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}
