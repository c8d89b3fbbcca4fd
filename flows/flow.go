package flows

// Flow is a conversational capability that can be attached to a profile's
// chatbot, bounded per profile by the gateway's flow limit.
type Flow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
}
