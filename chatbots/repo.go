package chatbots

type Repo interface {
	// EnsureForProfile returns the chatbot record for a profile, creating it
	// when none exists yet.
	EnsureForProfile(profileID string) (*Chatbot, error)
	GetByProfile(profileID string) (*Chatbot, error)
	SetConnected(profileID string, connected bool) error
	SetLastQR(profileID string, qr string) error
	AssignFlow(profileID, flowID string) error
}
