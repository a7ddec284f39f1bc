package types

// Event represents a typed event emitted during a settlement or protocol
// state transition. Attributes carry decimal-string amounts and hex-encoded
// addresses so downstream consumers never re-derive encodings.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
