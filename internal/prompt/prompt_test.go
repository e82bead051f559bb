package prompt

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ectormgl/SQLTranslator/internal/conversation"
)

func TestBuildIsDeterministicAndDoesNotTouchInputs(t *testing.T) {
	history := []conversation.Turn{
		conversation.Assistant(conversation.DefaultGreeting),
		conversation.Human("which 3 artists have the most tracks?"),
	}
	snapshot := append([]conversation.Turn(nil), history...)
	in := Input{
		Schema:   "CREATE TABLE Artist (\n\tArtistId INT NOT NULL\n)",
		History:  history,
		Question: "which 3 artists have the most tracks?",
	}

	first := Build(in)
	second := Build(in)
	if first != second {
		t.Fatal("Build() output differs between identical calls")
	}
	if !reflect.DeepEqual(history, snapshot) {
		t.Fatal("Build() modified the history")
	}
}

func TestBuildEmbedsAllSections(t *testing.T) {
	out := Build(Input{
		Schema:   "CREATE TABLE Track (\n\tTrackId INT NOT NULL\n)",
		History:  []conversation.Turn{conversation.Assistant("hello"), conversation.Human("count tracks")},
		Question: "count tracks",
	})

	for _, fragment := range []string{
		"You are a data analyst at a company.",
		"<SCHEMA>CREATE TABLE Track (\n\tTrackId INT NOT NULL\n)</SCHEMA>",
		"Conversation History: \nAI: hello\nHuman: count tracks",
		"Write only the SQL query and nothing else.",
		"Question: count tracks\nSQL Query:",
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("Build() missing %q in:\n%s", fragment, out)
		}
	}
	if n := strings.Count(out, "SQL Query: SELECT"); n != 2 {
		t.Fatalf("worked examples = %d, want 2", n)
	}
	if !strings.HasSuffix(out, "SQL Query:") {
		t.Fatal("prompt must end with the SQL Query cue")
	}
}

func TestBuildDoesNotExpandPlaceholdersInsideValues(t *testing.T) {
	out := Build(Input{Schema: "{question}", Question: "q"})
	if !strings.Contains(out, "<SCHEMA>{question}</SCHEMA>") {
		t.Fatalf("schema placeholder text was expanded:\n%s", out)
	}
}

func TestHistoryEmpty(t *testing.T) {
	if got := History(nil); got != "" {
		t.Fatalf("History(nil) = %q", got)
	}
}
