package chatbots

// Chatbot is the durable status record for one profile's messaging session:
// the connected flag, the last issued pairing code and the attached flows.
type Chatbot struct {
	ID        string   `json:"id"`
	ProfileID string   `json:"profile_id"`
	Connected bool     `json:"connected"`
	QRCode    string   `json:"qr_code,omitempty"`
	FlowIDs   []string `json:"flow_ids,omitempty"`
}
