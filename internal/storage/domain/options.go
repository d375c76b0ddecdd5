package domain

// SetOptions controls where and how SetItem stores a value.
type SetOptions struct {
	// Persistent selects the persistent tier instead of the session tier.
	Persistent bool
	// Encrypted seals the value. Without crypto the value is stored as plain JSON.
	Encrypted bool
}

// DefaultSetOptions returns session storage with encryption.
func DefaultSetOptions() SetOptions {
	return SetOptions{Encrypted: true}
}

// Tier returns the tier a write with these options targets first.
func (o SetOptions) Tier() Tier {
	if o.Persistent {
		return TierPersistent
	}
	return TierSession
}

// GetOptions controls how GetItem interprets a stored record.
type GetOptions struct {
	// Encrypted allows tagged records to be decrypted. Without it a tagged record
	// is reported as not found.
	Encrypted bool
}

// DefaultGetOptions returns options that decrypt tagged records.
func DefaultGetOptions() GetOptions {
	return GetOptions{Encrypted: true}
}

// WriteResult reports where a write landed.
type WriteResult struct {
	Requested Tier
	Tier      Tier
	// Degraded is true when the write fell back to memory.
	Degraded bool
	// Err is the requested tier's failure when Degraded is true.
	Err error
}

// ReadResult reports where a read found its value.
type ReadResult struct {
	Tier Tier
}
