package chatbots

import "github.com/rs/zerolog"

// Publisher pushes session status changes into the chatbot store.
// Writes are fire-and-forget from the session's perspective: failures are
// logged and never fed back into the session lifecycle.
type Publisher struct {
	repo Repo
	log  zerolog.Logger
}

func NewPublisher(repo Repo, logger zerolog.Logger) *Publisher {
	return &Publisher{repo: repo, log: logger}
}

func (p *Publisher) PublishConnected(profileID string, connected bool) {
	if err := p.repo.SetConnected(profileID, connected); err != nil {
		p.log.Err(err).Str("profile_id", profileID).Bool("connected", connected).Msg("Failed to update chatbot connected flag")
	}
}

func (p *Publisher) PublishQR(profileID string, qr string) {
	if err := p.repo.SetLastQR(profileID, qr); err != nil {
		p.log.Err(err).Str("profile_id", profileID).Msg("Failed to store chatbot pairing code")
	}
}
