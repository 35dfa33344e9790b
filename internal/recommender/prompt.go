package recommender

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frostyapps/cortex-demos/internal/cortex"
	"github.com/frostyapps/cortex-demos/internal/session"
)

const imdbBaseURL = "https://www.imdb.com/title/"

// Columns of the movie search service that feed the prompt and the references.
const (
	ColumnTitle    = "TITLE"
	ColumnIMDbID   = "IMDB_ID"
	ColumnOverview = "OVERVIEW"
)

var searchColumns = []string{ColumnTitle, ColumnIMDbID, ColumnOverview}

// englishOnly restricts search results to English language movies.
func englishOnly() map[string]any {
	return map[string]any{
		"@and": []any{
			map[string]any{"@eq": map[string]any{"ORIGINAL_LANGUAGE": "en"}},
		},
	}
}

const summaryTemplate = `
[INST]
Based on the chat history below and the question, generate a query that extend the question
with the chat history provided. The query should be in natural language.
Answer with only the query.

<chat_history>
%s
</chat_history>
<question>
%s
</question>
[/INST]
`

const ragTemplate = `
[INST]
You are an AI movie recommendation assistant with RAG capabilities. When a user asks for movie suggestions or information about films, you will be provided with relevant movie data between <context> and </context> tags.
Your task is to:
Always use the movie titles from the provided context. Never output placeholders like "Untitled (Context document X)".
Provide relevant movie suggestions based on the user's preferences and query.
Include a brief, engaging explanation for why each movie is recommended.
Your responses should:
Be coherent, concise, and directly address the user's request.
Draw only from the provided context to tailor recommendations.
If the user asks a question about movies that cannot be answered with the given context or chat history, simply state: "I'm sorry, but I don't have enough information to answer that question or make a recommendation based on that criteria."
Avoid phrases like "according to the provided context" or mentioning the RAG system. Instead, present the information as if you have comprehensive knowledge about films.

<chat_history>
%s
</chat_history>
<context>
%s
</context>
<question>
%s
</question>
[/INST]
Answer:
`

func IMDbURL(imdbID string) string {
	return imdbBaseURL + imdbID
}

// HistoryWindow returns up to n-1 messages preceding the last one. The last
// message is the question currently being answered.
func HistoryWindow(messages []session.Message, n int) []session.Message {
	if len(messages) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	start := len(messages) - n
	if start < 0 {
		start = 0
	}
	return messages[start : len(messages)-1]
}

// FormatHistory renders messages one per line as "role: content".
func FormatHistory(messages []session.Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

func SummaryPrompt(history []session.Message, question string) string {
	return fmt.Sprintf(summaryTemplate, FormatHistory(history), question)
}

func RAGPrompt(history []session.Message, contextDocs, question string) string {
	return fmt.Sprintf(ragTemplate, FormatHistory(history), contextDocs, question)
}

// ContextString numbers the search results as context documents.
func ContextString(results []cortex.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "Context document %d: %s %s\n\n", i+1, r.String(ColumnTitle), r.String(ColumnOverview))
	}
	return b.String()
}

type Reference struct {
	Title  string `json:"title"`
	IMDbID string `json:"imdb_id"`
	URL    string `json:"url"`
}

func References(results []cortex.SearchResult) []Reference {
	refs := make([]Reference, 0, len(results))
	for _, r := range results {
		id := r.String(ColumnIMDbID)
		refs = append(refs, Reference{
			Title:  r.String(ColumnTitle),
			IMDbID: id,
			URL:    IMDbURL(id),
		})
	}
	return refs
}

// ReferencesTable renders the citations as a markdown table.
func ReferencesTable(refs []Reference) string {
	var b strings.Builder
	b.WriteString("###### References \n\n| Movie Title | Link |\n|-------|-----|\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "| %s | [Link](%s) |\n", ref.Title, ref.URL)
	}
	return b.String()
}

// EscapeDollars keeps markdown renderers from reading "$" as math delimiters.
func EscapeDollars(s string) string {
	return strings.ReplaceAll(s, "$", `\$`)
}

var nonASCII = regexp.MustCompile(`[^\x00-\x7F]+`)

// CleanString strips quotes, their mis-decoded curly variants and any other
// non-ASCII characters before text goes into the answer log.
func CleanString(s string) string {
	s = strings.ReplaceAll(s, "‚Äú", "")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "‚Äò", "")
	s = strings.ReplaceAll(s, "'", "")
	return nonASCII.ReplaceAllString(s, "")
}
