package id

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func Generate() string {
	return uuid.New().String()
}

func IsValidUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// Reference builds a human-scannable ledger reference, e.g. "txn-1700000000123-ab12cd34".
func Reference(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.New().String()[:8])
}
