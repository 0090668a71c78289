package storage

import "chat-reply-engine/internal/types"

// RecordStore archives the records of imported transcripts. It never stores
// a built corpus; callers rebuild that from the records on every run.
type RecordStore interface {
	// SaveTranscript stores one transcript's records and returns its id.
	SaveTranscript(info types.TranscriptInfo, messages []types.Message, replies []types.Reply) (uint64, error)

	// ListTranscripts returns every archived transcript in import order.
	ListTranscripts() ([]types.TranscriptInfo, error)

	// LoadTranscript returns the records of one transcript in their original order.
	LoadTranscript(id uint64) ([]types.Message, []types.Reply, error)

	// DeleteTranscript removes a transcript and its records.
	DeleteTranscript(id uint64) error

	// Close flushes and closes the store.
	Close() error
}
