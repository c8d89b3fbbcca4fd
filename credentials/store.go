package credentials

// Bundle is the durable pairing/authentication material for one profile.
// Its contents are opaque to the gateway: the transport produces fresh
// snapshots during a session's life and consumes them on the next dial.
type Bundle []byte

func (b Bundle) Empty() bool {
	return len(b) == 0
}

// Store persists one credential bundle per profile id.
type Store interface {
	// Load returns the stored bundle, or an empty bundle when none exists.
	Load(profileID string) (Bundle, error)

	// Save durably writes a full snapshot. Safe to call repeatedly as the
	// transport refreshes credentials mid-session.
	Save(profileID string, bundle Bundle) error

	// Delete removes all durable material. Idempotent when nothing exists.
	Delete(profileID string) error
}
