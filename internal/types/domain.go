package types

import "time"

// Message is a transcript record that may have been replied to.
type Message struct {
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

// Reply is a transcript record sent in reply to the message with ReplyToID.
type Reply struct {
	Text      string `json:"text"`
	ReplyToID uint64 `json:"reply_to_id"`
}

// Entry pairs a historical request with every text sent in reply to it.
// Responses is never empty.
type Entry struct {
	Request   string   `json:"request"`
	Responses []string `json:"responses"`
}

// TranscriptInfo describes one archived transcript.
type TranscriptInfo struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Source       string    `json:"source"` // e.g., file path
	ImportedAt   time.Time `json:"imported_at"`
	MessageCount int       `json:"message_count"`
	ReplyCount   int       `json:"reply_count"`
}
