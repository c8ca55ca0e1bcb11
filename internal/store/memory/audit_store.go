package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/taskwell/taskwell/internal/models"
	"github.com/taskwell/taskwell/internal/store"
)

const defaultAuditListLimit = 100

// AuditStore implements store.AuditStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type AuditStore struct {
	mu sync.RWMutex

	entries []*models.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append stores a new audit entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries = append(s.entries, &clone)

	return nil
}

// List returns audit entries, newest first.
func (s *AuditStore) List(ctx context.Context, opts store.ListAuditOptions) ([]*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultAuditListLimit
	}

	var result []*models.AuditEntry
	for _, e := range s.entries {
		if opts.OrgID != nil && e.OrgID != *opts.OrgID {
			continue
		}
		clone := *e
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}
