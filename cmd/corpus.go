package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"chat-reply-engine/internal/engine"
	"chat-reply-engine/internal/index"
	"chat-reply-engine/internal/ingest"
	"chat-reply-engine/internal/storage"
)

// openArchive opens the transcript archive. With create unset a missing
// archive is an error instead of being created empty.
func (a *app) openArchive(create bool) (*storage.BoltArchive, error) {
	path := a.cfg.ArchivePath()
	if create {
		if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no archive at %s; import a transcript first or pass one as an argument", path)
	}

	archive, err := storage.NewBoltArchive(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return archive, nil
}

// loadCorpus builds the corpus from the given transcript files, or from
// every archived transcript when no file is given. Each transcript is
// paired on its own since message ids are only unique within one export.
func (a *app) loadCorpus(paths []string) (*index.Corpus, error) {
	var (
		parts []*index.Corpus
		err   error
	)
	if len(paths) > 0 {
		parts, err = loadFiles(paths)
	} else {
		parts, err = a.loadArchived()
	}
	if err != nil {
		return nil, err
	}

	corpus := index.Concat(parts...)
	if err := corpus.Validate(); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	log.Info().
		Str("component", "corpus").
		Int("transcripts", len(parts)).
		Int("entries", corpus.Len()).
		Int("responses", corpus.ResponseCount()).
		Msg("corpus ready")
	return corpus, nil
}

func loadFiles(paths []string) ([]*index.Corpus, error) {
	parts := make([]*index.Corpus, 0, len(paths))
	for _, p := range paths {
		tr, err := ingest.ParseFile(p)
		if err != nil {
			return nil, fmt.Errorf("load transcript: %w", err)
		}
		c := index.Build(tr.Messages, tr.Replies)
		log.Info().
			Str("component", "corpus").
			Str("file", p).
			Str("name", tr.Name).
			Int("messages", len(tr.Messages)).
			Int("replies", len(tr.Replies)).
			Int("skipped", tr.Skipped).
			Int("entries", c.Len()).
			Msg("transcript loaded")
		parts = append(parts, c)
	}
	return parts, nil
}

func (a *app) loadArchived() ([]*index.Corpus, error) {
	archive, err := a.openArchive(false)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	infos, err := archive.ListTranscripts()
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("archive %s holds no transcripts", a.cfg.ArchivePath())
	}

	parts := make([]*index.Corpus, 0, len(infos))
	for _, info := range infos {
		messages, replies, err := archive.LoadTranscript(info.ID)
		if err != nil {
			return nil, fmt.Errorf("load transcript #%d: %w", info.ID, err)
		}
		c := index.Build(messages, replies)
		log.Info().
			Str("component", "corpus").
			Uint64("transcript_id", info.ID).
			Str("name", info.Name).
			Int("entries", c.Len()).
			Msg("archived transcript loaded")
		parts = append(parts, c)
	}
	return parts, nil
}

func (a *app) newEngine(paths []string) (*engine.Engine, error) {
	corpus, err := a.loadCorpus(paths)
	if err != nil {
		return nil, err
	}
	return engine.NewEngine(corpus, a.cfg.EngineConfig(), a.cfg.EngineOptions()...)
}
