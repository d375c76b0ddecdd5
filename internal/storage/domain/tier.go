// Package domain defines the storage domain model: the three backend tiers, the
// stored record encodings and the options and results of facade operations.
package domain

import "fmt"

// Tier identifies one of the backends a record can live in.
type Tier int

const (
	// TierSession lives as long as the session backend keeps it (process or Redis TTL).
	TierSession Tier = iota
	// TierPersistent survives restarts.
	TierPersistent
	// TierMemory is the process-local fallback map. It is always available.
	TierMemory
)

// ProbeKeySuffix is appended to the namespace to form the capability probe key.
const ProbeKeySuffix = "__probe__"

// DefaultNamespace prefixes every key written by the storage.
const DefaultNamespace = "securestorage_"

// String returns the tier name used in logs and metrics.
func (t Tier) String() string {
	switch t {
	case TierSession:
		return "session"
	case TierPersistent:
		return "persistent"
	case TierMemory:
		return "memory"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier converts a tier name into a Tier.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "session":
		return TierSession, nil
	case "persistent":
		return TierPersistent, nil
	case "memory":
		return TierMemory, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid options: session, persistent, memory)", ErrInvalidTier, s)
	}
}

// Tiers lists every tier in read order.
func Tiers() []Tier {
	return []Tier{TierSession, TierPersistent, TierMemory}
}
