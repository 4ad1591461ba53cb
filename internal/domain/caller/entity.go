// Package caller contains the caller account domain model.
// A caller is the authenticated end user on whose behalf generations run,
// together with the monthly usage counters the ledger enforces.
package caller

import (
	"time"

	"github.com/google/uuid"
)

// Tier is a subscription tier that determines the monthly generation limit
type Tier string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
	TierFamily  Tier = "FAMILY"
)

// QuotaUnlimited is the sentinel limit for tiers with no monthly ceiling
const QuotaUnlimited int64 = -1

// Account is the caller record the usage ledger reads and writes.
// GenerationsThisMonth only ever moves through the ledger's reset and
// increment operations.
type Account struct {
	ID                   uuid.UUID
	Tier                 Tier
	GenerationsThisMonth int64
	LastResetAt          time.Time
}

// Unlimited reports whether a limit value means "no ceiling"
func Unlimited(limit int64) bool {
	return limit == QuotaUnlimited
}
