package prompt

import (
	"strings"

	"github.com/ectormgl/SQLTranslator/internal/conversation"
)

type Input struct {
	Schema   string
	History  []conversation.Turn
	Question string
}

const template = `You are a data analyst at a company. You are interacting with a user who is asking you questions about the company's database.
Based on the table schema below, write a SQL query that would answer the user's question. Take the conversation history into account.

<SCHEMA>{schema}</SCHEMA>

Conversation History: {chat_history}

Write only the SQL query and nothing else. Do not wrap the SQL query in any other text, not even backticks.

For example:
Question: which 3 artists have the most tracks?
SQL Query: SELECT ArtistId, COUNT(*) as track_count FROM Track GROUP BY ArtistId ORDER BY track_count DESC LIMIT 3;
Question: Name 10 artists
SQL Query: SELECT Name FROM Artist LIMIT 10;

Your turn:

Question: {question}
SQL Query:`

// Build fills the instruction template. It is pure: the same input always
// yields the same bytes and the history slice is only read.
func Build(in Input) string {
	replacer := strings.NewReplacer(
		"{schema}", in.Schema,
		"{chat_history}", History(in.History),
		"{question}", in.Question,
	)
	return replacer.Replace(template)
}

// History renders turns in order, one per line.
func History(turns []conversation.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, conversation.Render(turn))
	}
	return "\n" + strings.Join(lines, "\n")
}
