package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chat-reply-engine/internal/types"

	"go.etcd.io/bbolt"
)

var ErrTranscriptNotFound = errors.New("transcript not found")

var (
	bucketTranscripts = []byte("transcripts")
	bucketMessages    = []byte("messages")
	bucketReplies     = []byte("replies")
)

// BoltArchive keeps transcripts in a single bbolt file. Record keys are the
// transcript id followed by the record's position, both big-endian, so a
// cursor walks records in ingestion order.
type BoltArchive struct {
	db *bbolt.DB
}

var _ RecordStore = (*BoltArchive)(nil)

func NewBoltArchive(path string) (*BoltArchive, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTranscripts, bucketMessages, bucketReplies} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltArchive{db: db}, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func recordKey(transcript uint64, pos int) []byte {
	return append(itob(transcript), itob(uint64(pos))...)
}

func (s *BoltArchive) SaveTranscript(info types.TranscriptInfo, messages []types.Message, replies []types.Reply) (uint64, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		tb := tx.Bucket(bucketTranscripts)
		id, err := tb.NextSequence()
		if err != nil {
			return err
		}
		info.ID = id
		info.MessageCount = len(messages)
		info.ReplyCount = len(replies)
		if info.ImportedAt.IsZero() {
			info.ImportedAt = time.Now().UTC()
		}

		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		if err := tb.Put(itob(id), data); err != nil {
			return err
		}

		mb := tx.Bucket(bucketMessages)
		for i, m := range messages {
			data, err := json.Marshal(m)
			if err != nil {
				return err
			}
			if err := mb.Put(recordKey(id, i), data); err != nil {
				return err
			}
		}

		rb := tx.Bucket(bucketReplies)
		for i, r := range replies {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := rb.Put(recordKey(id, i), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return info.ID, nil
}

func (s *BoltArchive) ListTranscripts() ([]types.TranscriptInfo, error) {
	var out []types.TranscriptInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTranscripts).ForEach(func(_, v []byte) error {
			var info types.TranscriptInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return err
			}
			out = append(out, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltArchive) LoadTranscript(id uint64) ([]types.Message, []types.Reply, error) {
	var (
		messages []types.Message
		replies  []types.Reply
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketTranscripts).Get(itob(id)) == nil {
			return fmt.Errorf("%w: %d", ErrTranscriptNotFound, id)
		}

		prefix := itob(id)
		c := tx.Bucket(bucketMessages).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var m types.Message
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			messages = append(messages, m)
		}

		c = tx.Bucket(bucketReplies).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r types.Reply
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			replies = append(replies, r)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return messages, replies, nil
}

func (s *BoltArchive) DeleteTranscript(id uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		tb := tx.Bucket(bucketTranscripts)
		if tb.Get(itob(id)) == nil {
			return fmt.Errorf("%w: %d", ErrTranscriptNotFound, id)
		}
		if err := tb.Delete(itob(id)); err != nil {
			return err
		}

		prefix := itob(id)
		for _, name := range [][]byte{bucketMessages, bucketReplies} {
			b := tx.Bucket(name)
			var keys [][]byte
			c := b.Cursor()
			for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
				keys = append(keys, append([]byte(nil), k...))
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *BoltArchive) Close() error {
	return s.db.Close()
}
