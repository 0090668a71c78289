// Package ingest reads chat transcript exports into message and reply
// records.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"chat-reply-engine/internal/types"
)

// ErrMalformedTranscript means the export is not an object with a
// messages array.
var ErrMalformedTranscript = errors.New("malformed transcript")

// Transcript is the usable content of one export.
type Transcript struct {
	Name     string
	Messages []types.Message
	Replies  []types.Reply

	// Skipped counts chat messages left out of Messages for lacking plain
	// text or an integer id.
	Skipped int
}

type export struct {
	Name     *string           `json:"name"`
	Messages []json.RawMessage `json:"messages"`
}

// ParseFile opens path and parses it as a transcript export.
func ParseFile(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse decodes an export. Service records (type other than "message")
// are ignored. A chat message becomes a Message when it has string text and
// a non-negative integer id, and additionally a Reply when it also has a
// non-negative integer reply_to_message_id.
func Parse(r io.Reader) (*Transcript, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedTranscript)
	}

	var ex export
	if err := json.Unmarshal(raw, &ex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTranscript, err)
	}
	if ex.Messages == nil {
		return nil, fmt.Errorf("%w: missing messages array", ErrMalformedTranscript)
	}

	t := &Transcript{}
	if ex.Name != nil {
		t.Name = *ex.Name
	}

	for _, rm := range ex.Messages {
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(rm, &rec); err != nil {
			t.Skipped++
			continue
		}
		var kind string
		if json.Unmarshal(rec["type"], &kind) != nil || kind != "message" {
			continue
		}

		var text string
		if !decodeString(rec["text"], &text) {
			t.Skipped++
			continue
		}

		if replyTo, ok := decodeID(rec["reply_to_message_id"]); ok {
			t.Replies = append(t.Replies, types.Reply{Text: text, ReplyToID: replyTo})
		}

		id, ok := decodeID(rec["id"])
		if !ok {
			t.Skipped++
			continue
		}
		t.Messages = append(t.Messages, types.Message{ID: id, Text: text})
	}

	log.Debug().
		Str("component", "ingest").
		Str("name", t.Name).
		Int("records", len(ex.Messages)).
		Int("messages", len(t.Messages)).
		Int("replies", len(t.Replies)).
		Int("skipped", t.Skipped).
		Msg("transcript parsed")
	return t, nil
}

// decodeString accepts only a JSON string. Rich text exported as an array
// of entities is rejected.
func decodeString(raw json.RawMessage, out *string) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// decodeID accepts a JSON number holding a non-negative integer.
func decodeID(raw json.RawMessage) (uint64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var n json.Number
	if raw[0] == '"' || json.Unmarshal(raw, &n) != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
