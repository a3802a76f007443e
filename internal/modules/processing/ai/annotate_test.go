package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateParsesFencedJSON(t *testing.T) {
	client := &fakeClient{
		completeFn: func(context.Context, string, string, CompleteOptions) (string, error) {
			return "```json\n{\"summary\":\"Short summary.\",\"key_insights\":[\"one\",\" two \",\"\"],\"topics\":[\"Go\"],\"tags\":[\"go\",\"testing\"]}\n```", nil
		},
	}
	svc := newTestService(t, client)

	out, err := svc.Annotate(context.Background(), "note-1", "Title", "body text")
	require.NoError(t, err)
	assert.Equal(t, "Short summary.", out.Summary)
	assert.Equal(t, []string{"one", "two"}, out.KeyInsights)
	assert.Equal(t, []string{"Go"}, out.Topics)
	assert.Equal(t, []string{"go", "testing"}, out.Tags)
}

func TestAnnotateRejectsEmptySummary(t *testing.T) {
	client := &fakeClient{
		completeFn: func(context.Context, string, string, CompleteOptions) (string, error) {
			return `{"summary":"  ","key_insights":[],"topics":[],"tags":[]}`, nil
		},
	}
	svc := newTestService(t, client)

	_, err := svc.Annotate(context.Background(), "note-1", "Title", "body text")
	assert.Error(t, err)
}

func TestCleanListCapsAndTrims(t *testing.T) {
	out := cleanList([]string{" a ", "", "b", "c", "d"}, 3)
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestUnmarshalAIJSONPlain(t *testing.T) {
	var quiz Quiz
	require.NoError(t, unmarshalAIJSON(`{"question":"Q?","answer":"A"}`, &quiz))
	assert.Equal(t, "Q?", quiz.Question)
}

func TestTruncateTextRuneSafe(t *testing.T) {
	assert.Equal(t, "héll...", truncateText("héllo", 4))
	assert.Equal(t, "ok", truncateText("ok", 10))
}
