package index

import (
	"errors"

	"chat-reply-engine/internal/types"
)

// ErrEmptyCorpus means no message in the input had a reply attached.
var ErrEmptyCorpus = errors.New("corpus has no entries")

// Corpus is the immutable, order-preserving list of request/responses
// entries built from one or more transcripts.
type Corpus struct {
	entries []types.Entry
}

// Build pairs every message with the replies sent to it. Replies pointing
// at an unknown message and messages without replies are dropped. Entries
// keep the order of messages.
func Build(messages []types.Message, replies []types.Reply) *Corpus {
	groups := make(map[uint64][]string)
	for _, r := range replies {
		groups[r.ReplyToID] = append(groups[r.ReplyToID], r.Text)
	}

	entries := make([]types.Entry, 0, len(groups))
	for _, m := range messages {
		responses, ok := groups[m.ID]
		if !ok {
			continue
		}
		// Each group is attached once, to the first message carrying its id.
		delete(groups, m.ID)
		entries = append(entries, types.Entry{
			Request:   m.Text,
			Responses: responses,
		})
	}

	return &Corpus{entries: entries}
}

// Concat joins corpora in argument order. Nil corpora are skipped.
func Concat(corpora ...*Corpus) *Corpus {
	n := 0
	for _, c := range corpora {
		if c != nil {
			n += len(c.entries)
		}
	}
	entries := make([]types.Entry, 0, n)
	for _, c := range corpora {
		if c != nil {
			entries = append(entries, c.entries...)
		}
	}
	return &Corpus{entries: entries}
}

// Validate returns ErrEmptyCorpus when the corpus cannot answer anything.
func (c *Corpus) Validate() error {
	if c.Len() == 0 {
		return ErrEmptyCorpus
	}
	return nil
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entry returns the entry at position i. The returned value shares its
// Responses slice with the corpus and must not be modified.
func (c *Corpus) Entry(i int) types.Entry {
	return c.entries[i]
}

// Entries returns a copy of all entries.
func (c *Corpus) Entries() []types.Entry {
	out := make([]types.Entry, c.Len())
	for i := range out {
		e := c.entries[i]
		out[i] = types.Entry{
			Request:   e.Request,
			Responses: append([]string(nil), e.Responses...),
		}
	}
	return out
}

// ResponseCount is the total number of responses across entries.
func (c *Corpus) ResponseCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		n += len(c.entries[i].Responses)
	}
	return n
}
