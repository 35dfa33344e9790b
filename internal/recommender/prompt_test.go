package recommender

import (
	"strings"
	"testing"

	"github.com/frostyapps/cortex-demos/internal/cortex"
	"github.com/frostyapps/cortex-demos/internal/models"
	"github.com/frostyapps/cortex-demos/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgs(contents ...string) []session.Message {
	out := make([]session.Message, len(contents))
	for i, c := range contents {
		role := session.RoleUser
		if i%2 == 1 {
			role = session.RoleAssistant
		}
		out[i] = session.Message{Role: role, Content: c}
	}
	return out
}

func TestHistoryWindow(t *testing.T) {
	all := msgs("q1", "a1", "q2", "a2", "q3", "a3", "q4")

	window := HistoryWindow(all, 5)
	require.Len(t, window, 4)
	assert.Equal(t, "q2", window[0].Content)
	assert.Equal(t, "a3", window[3].Content)

	// the current question is never part of the window
	assert.Len(t, HistoryWindow(all, 10), 6)
	assert.Empty(t, HistoryWindow(all, 1))
	assert.Empty(t, HistoryWindow(msgs("q1"), 5))
	assert.Empty(t, HistoryWindow(nil, 5))
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "user: q1\nassistant: a1", FormatHistory(msgs("q1", "a1")))
	assert.Equal(t, "", FormatHistory(nil))
}

func TestSummaryPrompt(t *testing.T) {
	prompt := SummaryPrompt(msgs("sci-fi please", "Try Dune."), "something older?")

	assert.Contains(t, prompt, "[INST]")
	assert.Contains(t, prompt, "Answer with only the query.")
	assert.Contains(t, prompt, "<chat_history>\nuser: sci-fi please\nassistant: Try Dune.\n</chat_history>")
	assert.Contains(t, prompt, "<question>\nsomething older?\n</question>\n[/INST]")
}

func TestRAGPrompt(t *testing.T) {
	prompt := RAGPrompt(nil, "Context document 1: Heat A heist.\n\n", "heist films")

	assert.Contains(t, prompt, "You are an AI movie recommendation assistant with RAG capabilities.")
	assert.Contains(t, prompt, "<chat_history>\n\n</chat_history>")
	assert.Contains(t, prompt, "<context>\nContext document 1: Heat A heist.\n\n\n</context>")
	assert.Contains(t, prompt, "<question>\nheist films\n</question>")
	assert.True(t, strings.HasSuffix(prompt, "[/INST]\nAnswer:\n"))
}

func sampleResults() []cortex.SearchResult {
	return []cortex.SearchResult{
		{"TITLE": "Heat", "IMDB_ID": "tt0113277", "OVERVIEW": "A heist."},
		{"TITLE": "Ronin", "IMDB_ID": "tt0122690", "OVERVIEW": "Mercenaries."},
	}
}

func TestContextString(t *testing.T) {
	assert.Equal(t,
		"Context document 1: Heat A heist.\n\nContext document 2: Ronin Mercenaries.\n\n",
		ContextString(sampleResults()))
	assert.Equal(t, "", ContextString(nil))
}

func TestReferences(t *testing.T) {
	refs := References(sampleResults())
	require.Len(t, refs, 2)
	assert.Equal(t, "https://www.imdb.com/title/tt0113277", refs[0].URL)

	table := ReferencesTable(refs)
	assert.True(t, strings.HasPrefix(table, "###### References \n\n| Movie Title | Link |\n|-------|-----|\n"))
	assert.Contains(t, table, "| Ronin | [Link](https://www.imdb.com/title/tt0122690) |\n")
}

func TestEscapeDollars(t *testing.T) {
	assert.Equal(t, `costs \$5 or \$10`, EscapeDollars("costs $5 or $10"))
}

func TestCleanString(t *testing.T) {
	tests := map[string]string{
		`He said "hi"`:            "He said hi",
		"it's":                    "its",
		"café crème":    "caf crme",
		"‚Äúquoted‚Äò":            "quoted",
		"emoji \U0001F3AC movies": "emoji  movies",
		"plain ascii":             "plain ascii",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanString(in), in)
	}
}

func TestApplyOptions(t *testing.T) {
	model := "llama3-8b"
	chunks := 7
	history := false

	opts, err := ApplyOptions(DefaultOptions(), models.SessionOptionsRequest{
		Model:              &model,
		NumRetrievedChunks: &chunks,
		UseChatHistory:     &history,
	})
	require.NoError(t, err)
	assert.Equal(t, "llama3-8b", opts.Model)
	assert.Equal(t, 7, opts.NumRetrievedChunks)
	assert.Equal(t, 5, opts.NumChatMessages)
	assert.False(t, opts.UseChatHistory)
}

func TestApplyOptions_Invalid(t *testing.T) {
	bad := "gpt-x"
	zero := 0
	eleven := 11

	cases := []models.SessionOptionsRequest{
		{Model: &bad},
		{NumRetrievedChunks: &zero},
		{NumChatMessages: &eleven},
	}
	for _, req := range cases {
		_, err := ApplyOptions(DefaultOptions(), req)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "mistral-large", opts.Model)
	assert.Equal(t, 3, opts.NumRetrievedChunks)
	assert.Equal(t, 5, opts.NumChatMessages)
	assert.True(t, opts.UseChatHistory)
	assert.False(t, opts.Debug)
}
