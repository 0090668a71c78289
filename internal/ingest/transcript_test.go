package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-reply-engine/internal/types"
)

func TestParseFile(t *testing.T) {
	tr, err := ParseFile("testdata/chat.json")
	require.NoError(t, err)

	assert.Equal(t, "Weekend plans", tr.Name)
	assert.Equal(t, []types.Message{
		{ID: 2, Text: "Hello everyone"},
		{ID: 3, Text: "Hi Olena!"},
		{ID: 4, Text: "hey hey"},
		{ID: 5, Text: "Who is going hiking on Saturday?"},
		{ID: 7, Text: "I am, if it does not rain"},
		{ID: 8, Text: ""},
		{ID: 9, Text: "See you there"},
	}, tr.Messages)
	assert.Equal(t, []types.Reply{
		{Text: "Hi Olena!", ReplyToID: 2},
		{Text: "hey hey", ReplyToID: 2},
		{Text: "I am, if it does not rain", ReplyToID: 5},
		{Text: "", ReplyToID: 7},
		{Text: "See you there", ReplyToID: 120},
	}, tr.Replies)
	assert.Equal(t, 1, tr.Skipped)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("testdata/does-not-exist.json")
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`[]`,
		`{"name": "x"}`,
		`{"messages": {}}`,
		`{"messages": [`,
	}
	for _, in := range inputs {
		_, err := Parse(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMalformedTranscript, "input %q", in)
	}
}

func TestParse_SkipsBadIDs(t *testing.T) {
	in := `{"messages": [
		{"type": "message", "id": -1, "text": "negative"},
		{"type": "message", "id": 1.5, "text": "fraction"},
		{"type": "message", "id": "3", "text": "quoted"},
		{"type": "message", "text": "no id"},
		{"type": "message", "id": 4, "text": "reply with bad target", "reply_to_message_id": "2"},
		{"type": "message", "id": 5, "text": "reply with null target", "reply_to_message_id": null},
		{"type": "message", "id": 6, "text": null},
		{"id": 7, "text": "untyped"},
		"not an object"
	]}`
	tr, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Empty(t, tr.Name)
	assert.Equal(t, []types.Message{
		{ID: 4, Text: "reply with bad target"},
		{ID: 5, Text: "reply with null target"},
	}, tr.Messages)
	assert.Empty(t, tr.Replies)
	assert.Equal(t, 6, tr.Skipped)
}

func TestParse_ReplyWithoutIDStillReplies(t *testing.T) {
	in := `{"messages": [
		{"type": "message", "id": 1, "text": "question"},
		{"type": "message", "text": "answer", "reply_to_message_id": 1}
	]}`
	tr, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, tr.Messages, 1)
	assert.Equal(t, []types.Reply{{Text: "answer", ReplyToID: 1}}, tr.Replies)
	assert.Equal(t, 1, tr.Skipped)
}
