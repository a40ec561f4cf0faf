package logic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth_engine/dal"
	"growth_engine/shared"
	"growth_engine/texts"
)

// claudeStub serves canned Messages API responses and records the prompts.
type claudeStub struct {
	reply    string
	status   int
	requests []claudeRequest
}

func (cs *claudeStub) handler(w http.ResponseWriter, r *http.Request) {
	var req claudeRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	cs.requests = append(cs.requests, req)
	status := cs.status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "overloaded_error", "message": "try later"},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"content": []map[string]string{{"type": "text", "text": cs.reply}},
	})
}

func testGenerator(t *testing.T, stub *claudeStub) *contentGenerator {
	srv := httptest.NewServer(http.HandlerFunc(stub.handler))
	t.Cleanup(srv.Close)
	cfg := &shared.Config{Content: shared.ContentConfig{Model: "claude-sonnet-4-5", MaxTokens: 1024}}
	cfg.Secrets.AnthropicApiKey = "key"
	return &contentGenerator{
		cfg:     cfg,
		logger:  &nullLogger{},
		txt:     texts.NewTexts(),
		metrics: &nullMetrics{},
		client:  &http.Client{Timeout: 5 * time.Second},
		apiUrl:  srv.URL,
	}
}

func testClient() *dal.Client {
	return &dal.Client{
		Id: "cli-1", Name: "Acme", ProductName: "AcmeBot",
		ProductDescription: "Automates widget sorting",
		ValueProps:         []string{"saves time"},
		Tone:               "casual",
		DisclosureText:     "I work on AcmeBot",
	}
}

func TestGenerateReply(t *testing.T) {
	stub := &claudeStub{reply: "Have you tried sorting them by color first?"}
	cg := testGenerator(t, stub)

	text, skip, err := cg.GenerateReply(context.Background(), testClient(),
		"widgets", "How do I sort these?", "So many widgets.", []string{"Just use a spreadsheet"})
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, "Have you tried sorting them by color first?", text)

	// Prompt carries product context and the post
	require.Len(t, stub.requests, 1)
	assert.Contains(t, stub.requests[0].System, "AcmeBot")
	assert.Contains(t, stub.requests[0].System, "I work on AcmeBot")
	assert.Contains(t, stub.requests[0].Messages[0].Content, "How do I sort these?")
	assert.Contains(t, stub.requests[0].Messages[0].Content, "Just use a spreadsheet")
}

func TestGenerateReplySkipSentinel(t *testing.T) {
	for _, reply := range []string{"skip", "Skip", " SKIP \n"} {
		cg := testGenerator(t, &claudeStub{reply: reply})
		_, skip, err := cg.GenerateReply(context.Background(), testClient(), "widgets", "t", "c", nil)
		require.NoError(t, err)
		assert.True(t, skip, "reply: %q", reply)
	}
}

func TestGenerateWarmupCommentSkip(t *testing.T) {
	cg := testGenerator(t, &claudeStub{reply: "skip"})
	_, skip, err := cg.GenerateWarmupComment(context.Background(), "AskReddit", "title", "content")
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestGeneratePostParsing(t *testing.T) {
	stub := &claudeStub{reply: "TITLE: Five widget lessons\n---\nCONTENT:\nHere is what I learned."}
	cg := testGenerator(t, stub)

	title, body, err := cg.GeneratePost(context.Background(), testClient(), "widgets", "widget lessons", "story", true)
	require.NoError(t, err)
	assert.Equal(t, "Five widget lessons", title)
	assert.Equal(t, "Here is what I learned.", body)
}

func TestGeneratePostMalformedFallsBack(t *testing.T) {
	stub := &claudeStub{reply: "Just some text with no markers"}
	cg := testGenerator(t, stub)

	title, body, err := cg.GeneratePost(context.Background(), testClient(), "widgets", "widget lessons", "value", false)
	require.NoError(t, err)
	assert.Equal(t, "widget lessons", title)
	assert.Equal(t, "Just some text with no markers", body)
}

func TestScoreMention(t *testing.T) {
	stub := &claudeStub{reply: `{"relevance_score": 0.85, "sentiment": "question", "should_reply": true, "reasoning": "asking for recs"}`}
	cg := testGenerator(t, stub)

	score, err := cg.ScoreMention(context.Background(), testClient(), "widgets", "Any tool for this?", "Looking for recs")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, score.RelevanceScore, 0.0001)
	assert.Equal(t, "question", score.Sentiment)
	assert.True(t, score.ShouldReply)
}

func TestScoreMentionFencedJson(t *testing.T) {
	stub := &claudeStub{reply: "```json\n{\"relevance_score\": 0.3, \"sentiment\": \"neutral\", \"should_reply\": false}\n```"}
	cg := testGenerator(t, stub)

	score, err := cg.ScoreMention(context.Background(), testClient(), "widgets", "t", "c")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, score.RelevanceScore, 0.0001)
	assert.False(t, score.ShouldReply)
}

func TestScoreMentionGarbageNeverReplies(t *testing.T) {
	stub := &claudeStub{reply: "I cannot produce JSON today."}
	cg := testGenerator(t, stub)

	score, err := cg.ScoreMention(context.Background(), testClient(), "widgets", "t", "c")
	require.NoError(t, err)
	assert.False(t, score.ShouldReply)
}

func TestCallClaudeErrorStatus(t *testing.T) {
	cg := testGenerator(t, &claudeStub{status: http.StatusTooManyRequests})
	_, _, err := cg.GenerateReply(context.Background(), testClient(), "widgets", "t", "c", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCustomizeForSubredditErrorKeepsOriginal(t *testing.T) {
	cg := testGenerator(t, &claudeStub{status: http.StatusInternalServerError})
	res, err := cg.CustomizeForSubreddit(context.Background(), "original text", "widgets", "")
	require.NoError(t, err)
	assert.Equal(t, "original text", res)
}

func TestTruncatedPromptStaysValidUtf8(t *testing.T) {
	stub := &claudeStub{reply: `{"relevance_score": 0.5, "sentiment": "neutral", "should_reply": false}`}
	cg := testGenerator(t, stub)

	// A long spaceless multi-byte post must not get cut mid-rune
	content := strings.Repeat("日本語のテキスト", 500)
	_, err := cg.ScoreMention(context.Background(), testClient(), "widgets", "t", content)
	require.NoError(t, err)
	require.Len(t, stub.requests, 1)
	assert.True(t, utf8.ValidString(stub.requests[0].Messages[0].Content))
}

func TestGenerateKeywords(t *testing.T) {
	stub := &claudeStub{reply: `[
		{"keyword": "  Widget Sorter ", "type": "product", "priority": 10},
		{"keyword": "how to sort widgets", "priority": 15},
		{"keyword": "widget tool recommendation", "type": "solution"},
		{"keyword": "", "type": "industry", "priority": 3}
	]`}
	cg := testGenerator(t, stub)

	keywords, err := cg.GenerateKeywords(context.Background(), testClient())
	require.NoError(t, err)
	require.Len(t, keywords, 3)
	assert.Equal(t, "widget sorter", keywords[0].Keyword)
	assert.Equal(t, "product", keywords[0].Type)
	assert.Equal(t, 10, keywords[0].Priority)
	// Missing type defaults, out-of-range priority gets clamped
	assert.Equal(t, "industry", keywords[1].Type)
	assert.Equal(t, 10, keywords[1].Priority)
	// Missing priority defaults to the middle of the range
	assert.Equal(t, 5, keywords[2].Priority)

	require.Len(t, stub.requests, 1)
	assert.Contains(t, stub.requests[0].Messages[0].Content, "AcmeBot")
	assert.Contains(t, stub.requests[0].Messages[0].Content, "saves time")
}

func TestGenerateKeywordsGarbageFallsBack(t *testing.T) {
	cg := testGenerator(t, &claudeStub{reply: "I cannot produce JSON today."})

	keywords, err := cg.GenerateKeywords(context.Background(), testClient())
	require.NoError(t, err)
	require.Len(t, keywords, 3)
	assert.Equal(t, "acmebot", keywords[0].Keyword)
	assert.Equal(t, 10, keywords[0].Priority)
	assert.Equal(t, "acmebot review", keywords[1].Keyword)
	assert.Equal(t, "acmebot alternative", keywords[2].Keyword)
}

func TestSuggestSubreddits(t *testing.T) {
	stub := &claudeStub{reply: `[
		{"name": "r/widgets", "reasoning": "Core audience", "estimated_relevance": 0.9, "category": "industry"},
		{"name": "manufacturing", "reasoning": "Adjacent"},
		{"name": ""}
	]`}
	cg := testGenerator(t, stub)

	subs, err := cg.SuggestSubreddits(context.Background(), testClient())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "widgets", subs[0].Name)
	assert.InDelta(t, 0.9, subs[0].Relevance, 0.0001)
	assert.Equal(t, "industry", subs[0].Category)
	// Missing score and category get defaults
	assert.Equal(t, "manufacturing", subs[1].Name)
	assert.InDelta(t, 0.5, subs[1].Relevance, 0.0001)
	assert.Equal(t, "general", subs[1].Category)
}

func TestSuggestSubredditsGarbageYieldsNothing(t *testing.T) {
	cg := testGenerator(t, &claudeStub{reply: "no json here"})

	subs, err := cg.SuggestSubreddits(context.Background(), testClient())
	require.NoError(t, err)
	assert.Empty(t, subs)
}
