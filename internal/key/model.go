package key

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	PermissionRead      = "READ"
	PermissionScheduler = "SCHEDULER"
)

// APIKey authenticates machine callers, e.g. the external cron that triggers
// distribution runs. Only a sha256 hash of the key is stored; the raw key is
// shown once at creation.
type APIKey struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	KeyHash     string         `gorm:"uniqueIndex;not null" json:"-"`
	Permissions pq.StringArray `gorm:"type:text[]" json:"permissions"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	LastUsedAt  *time.Time     `json:"last_used_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (k *APIKey) HasPermission(perm string) bool {
	for _, p := range k.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
