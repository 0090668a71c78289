package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-reply-engine/internal/engine"
	"chat-reply-engine/internal/index"
)

type env struct {
	dataDir string
	cfgFile string
}

func newEnv(t *testing.T, config string) env {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(config), 0o644))
	return env{dataDir: filepath.Join(dir, "data"), cfgFile: cfgFile}
}

func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", e.cfgFile, "--data", e.dataDir, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestChat_FromFile(t *testing.T) {
	e := newEnv(t, "")

	out, err := e.run(t, "Hello everyone\nhiking\nzzzzqqq\n", "chat", "testdata/chat.json")
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 3)
	assert.Contains(t, []string{"Hi Olena!", "hey hey"}, got[0])
	assert.Equal(t, "I am, if it does not rain", got[1])
	// Nothing matches, so the last entry answers with its empty reply.
	assert.Equal(t, "", got[2])
}

func TestChat_NoInput(t *testing.T) {
	e := newEnv(t, "")
	out, err := e.run(t, "", "chat", "testdata/chat.json")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestChat_EmptyCorpus(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.run(t, "anyone?\n", "chat", "testdata/no_replies.json")
	assert.ErrorIs(t, err, index.ErrEmptyCorpus)
}

func TestChat_MissingTranscript(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.run(t, "", "chat", "testdata/missing.json")
	assert.Error(t, err)
}

func TestChat_NoArchive(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.run(t, "hello\n", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no archive")
}

func TestAsk_JSON(t *testing.T) {
	e := newEnv(t, "")

	out, err := e.run(t, "", "ask", "-t", "testdata/chat.json", "--json", "hiking")
	require.NoError(t, err)

	var m engine.Match
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, 1, m.Position)
	assert.Equal(t, 1+5*129, m.Score)
	assert.True(t, m.Matched)
	assert.Equal(t, "Who is going hiking on Saturday?", m.Entry.Request)
	assert.Equal(t, "I am, if it does not rain", m.Response)
}

func TestAsk_JoinsArgs(t *testing.T) {
	e := newEnv(t, "")
	out, err := e.run(t, "", "ask", "-t", "testdata/chat.json", "going", "hiking")
	require.NoError(t, err)
	assert.Equal(t, "I am, if it does not rain\n", out)
}

func TestImport_ThenAnswerFromArchive(t *testing.T) {
	e := newEnv(t, "")

	out, err := e.run(t, "", "import", "testdata/chat.json")
	require.NoError(t, err)
	assert.Contains(t, out, `imported "Weekend plans" as #1 (7 messages, 5 replies, 3 entries)`)

	out, err = e.run(t, "", "transcripts")
	require.NoError(t, err)
	assert.Contains(t, out, "Weekend plans")

	out, err = e.run(t, "hiking\n", "chat")
	require.NoError(t, err)
	assert.Equal(t, "I am, if it does not rain\n", out)

	out, err = e.run(t, "", "transcripts", "rm", "1")
	require.NoError(t, err)
	assert.Equal(t, "removed #1\n", out)

	_, err = e.run(t, "hiking\n", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds no transcripts")
}

func TestTranscripts_RemoveInvalidID(t *testing.T) {
	e := newEnv(t, "")
	_, err := e.run(t, "", "import", "testdata/chat.json")
	require.NoError(t, err)

	_, err = e.run(t, "", "transcripts", "rm", "one")
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	e := newEnv(t, "")

	out, err := e.run(t, "", "score", "abc", "xabcx")
	require.NoError(t, err)
	assert.Equal(t, "259\n", out)

	out, err = e.run(t, "", "score", "acb", "abc")
	require.NoError(t, err)
	assert.Equal(t, "no match\n", out)
}

func TestScore_UsesConfiguredScoring(t *testing.T) {
	e := newEnv(t, "scoring:\n  consecutive_bonus: 0\n  word_start_bonus: 10\n  distance_penalty: 0\n")

	out, err := e.run(t, "", "score", "fb", "foo bar")
	require.NoError(t, err)
	assert.Equal(t, "22\n", out)
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t, "engine:\n  workers: 0\n")
	_, err := e.run(t, "", "score", "a", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.workers")
}

func TestRunDialog_ReportsEngineError(t *testing.T) {
	err := runDialog(&engine.Engine{}, strings.NewReader("hi\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, engine.ErrNoCorpusEntries)
}
