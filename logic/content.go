package logic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"growth_engine/dal"
	"growth_engine/shared"
	"growth_engine/texts"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_content.go -package mocks growth_engine/logic IContentGenerator

const anthropicMessagesUrl = "https://api.anthropic.com/v1/messages"
const anthropicVersion = "2023-06-01"
const llmTimeoutSec = 120

// Per-prompt input truncation, so one sprawling post can't blow the budget.
const (
	maxReplyPostLen    = 2000
	maxCommentQuoteLen = 200
	maxWarmupPostLen   = 500
	maxScorePostLen    = 1500
)

type MentionScore struct {
	RelevanceScore float64 `json:"relevance_score"`
	Sentiment      string  `json:"sentiment"`
	ShouldReply    bool    `json:"should_reply"`
	Reasoning      string  `json:"reasoning"`
}

type KeywordSuggestion struct {
	Keyword  string `json:"keyword"`
	Type     string `json:"type"`
	Priority int    `json:"priority"`
}

type SubredditSuggestion struct {
	Name      string  `json:"name"`
	Reasoning string  `json:"reasoning"`
	Relevance float64 `json:"estimated_relevance"`
	Category  string  `json:"category"`
}

// IContentGenerator produces all model-written text: replies, warmup
// comments, full posts, and mention triage. A (text, false, nil) return means
// usable text; (_, true, nil) means the model chose to sit this one out.
type IContentGenerator interface {
	GenerateReply(ctx context.Context, client *dal.Client, subreddit, title, content string,
		comments []string) (text string, skip bool, err error)
	GenerateWarmupComment(ctx context.Context, subreddit, title, content string) (text string, skip bool, err error)
	CustomizeForSubreddit(ctx context.Context, content, subreddit, rules string) (string, error)
	GeneratePost(ctx context.Context, client *dal.Client, subreddit, topic, postType string,
		includeMention bool) (title, body string, err error)
	ScoreMention(ctx context.Context, client *dal.Client, subreddit, title, content string) (*MentionScore, error)
	GenerateKeywords(ctx context.Context, client *dal.Client) ([]*KeywordSuggestion, error)
	SuggestSubreddits(ctx context.Context, client *dal.Client) ([]*SubredditSuggestion, error)
}

type contentGenerator struct {
	cfg     *shared.Config
	logger  shared.ILogger
	txt     texts.ITexts
	metrics IMetrics
	client  *http.Client
	apiUrl  string
}

func NewContentGenerator(
	cfg *shared.Config,
	logger shared.ILogger,
	txt texts.ITexts,
	metrics IMetrics,
) IContentGenerator {
	return &contentGenerator{
		cfg:     cfg,
		logger:  logger,
		txt:     txt,
		metrics: metrics,
		client:  &http.Client{Timeout: llmTimeoutSec * time.Second},
		apiUrl:  anthropicMessagesUrl,
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (cg *contentGenerator) callClaude(ctx context.Context, label, system, user string, maxTokens int) (string, error) {

	obs := cg.metrics.StartLlmRequestOut(label)
	defer obs.Finish()

	if maxTokens == 0 {
		maxTokens = cg.cfg.Content.MaxTokens
	}
	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     cg.cfg.Content.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []claudeMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cg.apiUrl, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", cg.cfg.Secrets.AnthropicApiKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := cg.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var cr claudeResponse
	if err = json.Unmarshal(respBytes, &cr); err != nil {
		return "", fmt.Errorf("cannot parse model response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if cr.Error != nil {
			msg = cr.Error.Message
		}
		return "", fmt.Errorf("model request failed with status %d: %s", resp.StatusCode, msg)
	}
	var sb strings.Builder
	for _, block := range cr.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func isSkip(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "skip")
}

// stripCodeFence unwraps ```json ... ``` style fences the model sometimes
// insists on despite instructions.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func (cg *contentGenerator) GenerateReply(ctx context.Context, client *dal.Client,
	subreddit, title, content string, comments []string) (string, bool, error) {

	var quoted []string
	for i, c := range comments {
		if i >= 10 {
			break
		}
		quoted = append(quoted, "- "+shared.TruncateWithEllipsis(c, maxCommentQuoteLen))
	}
	valueProps := "Not specified"
	if len(client.ValueProps) > 0 {
		valueProps = strings.Join(client.ValueProps, ", ")
	}
	system := cg.txt.WithVals("reply-system.txt", map[string]string{
		"tone":        client.Tone,
		"productName": client.ProductName,
		"productDesc": client.ProductDescription,
		"valueProps":  valueProps,
		"disclosure":  client.DisclosureText,
	})
	user := cg.txt.WithVals("reply-user.txt", map[string]string{
		"subreddit": subreddit,
		"title":     title,
		"content":   shared.TruncateWithEllipsis(content, maxReplyPostLen),
		"comments":  strings.Join(quoted, "\n"),
	})
	res, err := cg.callClaude(ctx, "reply", system, user, 0)
	if err != nil {
		return "", false, err
	}
	if isSkip(res) {
		cg.logger.Debugf("Model decided to skip reply in r/%s", subreddit)
		return "", true, nil
	}
	return res, false, nil
}

func (cg *contentGenerator) GenerateWarmupComment(ctx context.Context,
	subreddit, title, content string) (string, bool, error) {

	system := cg.txt.Get("warmup-comment-system.txt")
	user := cg.txt.WithVals("warmup-comment-user.txt", map[string]string{
		"subreddit": subreddit,
		"title":     title,
		"content":   shared.TruncateWithEllipsis(content, maxWarmupPostLen),
	})
	res, err := cg.callClaude(ctx, "warmup_comment", system, user, 200)
	if err != nil {
		return "", false, err
	}
	if isSkip(res) {
		return "", true, nil
	}
	return res, false, nil
}

func (cg *contentGenerator) CustomizeForSubreddit(ctx context.Context,
	content, subreddit, rules string) (string, error) {

	if rules == "" {
		rules = "Standard Reddit rules apply"
	}
	system := cg.txt.Get("customize-system.txt")
	user := cg.txt.WithVals("customize-user.txt", map[string]string{
		"content":   content,
		"subreddit": subreddit,
		"rules":     rules,
	})
	res, err := cg.callClaude(ctx, "customize", system, user, 0)
	if err != nil {
		// Customization is best-effort; the original content still stands
		cg.logger.Warnf("Failed to customize content for r/%s: %v", subreddit, err)
		return content, nil
	}
	return res, nil
}

var postTypeInstructions = map[string]string{
	"value":      "Write an informative, value-packed post that teaches something useful related to the topic.",
	"story":      "Write a personal story or case study that's engaging and relatable. Be authentic and share real insights.",
	"question":   "Write a thought-provoking question that sparks discussion. Show genuine curiosity.",
	"discussion": "Start a discussion about an interesting topic or trend. Share your perspective and invite others.",
}

func (cg *contentGenerator) GeneratePost(ctx context.Context, client *dal.Client,
	subreddit, topic, postType string, includeMention bool) (string, string, error) {

	typeInstruction, ok := postTypeInstructions[postType]
	if !ok {
		typeInstruction = postTypeInstructions["value"]
	}
	mentionInstruction := "Do NOT mention any products or services."
	if includeMention {
		mentionInstruction = "Naturally weave in a mention of the product if it genuinely adds value. Include disclosure if mentioning."
	}
	system := cg.txt.WithVals("generate-post-system.txt", map[string]string{
		"typeInstruction":    typeInstruction,
		"mentionInstruction": mentionInstruction,
		"subreddit":          subreddit,
		"productName":        client.ProductName,
		"productDesc":        client.ProductDescription,
	})
	user := cg.txt.WithVals("generate-post-user.txt", map[string]string{
		"postType":  postType,
		"subreddit": subreddit,
		"topic":     topic,
	})
	res, err := cg.callClaude(ctx, "generate_post", system, user, 2000)
	if err != nil {
		return "", "", err
	}
	title, body := parseTitleAndContent(res, topic)
	return title, body, nil
}

// parseTitleAndContent splits the "TITLE: ... --- CONTENT: ..." response
// format; a malformed response falls back to the topic as title.
func parseTitleAndContent(res, fallbackTitle string) (string, string) {
	parts := strings.SplitN(res, "---", 2)
	title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "TITLE:"))
	if title == "" || len(parts) < 2 {
		return fallbackTitle, res
	}
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[1]), "CONTENT:"))
	return title, body
}

func (cg *contentGenerator) ScoreMention(ctx context.Context, client *dal.Client,
	subreddit, title, content string) (*MentionScore, error) {

	system := cg.txt.Get("score-mention-system.txt")
	user := cg.txt.WithVals("score-mention-user.txt", map[string]string{
		"subreddit":   subreddit,
		"title":       title,
		"content":     shared.TruncateWithEllipsis(content, maxScorePostLen),
		"productName": client.ProductName,
		"productDesc": client.ProductDescription,
	})
	res, err := cg.callClaude(ctx, "score_mention", system, user, 500)
	if err != nil {
		return nil, err
	}
	var score MentionScore
	if err = json.Unmarshal([]byte(stripCodeFence(res)), &score); err != nil {
		cg.logger.Warnf("Model returned unparseable triage JSON: %v", err)
		// Unscorable mentions stay in the record but never trigger a reply
		return &MentionScore{RelevanceScore: 0.5, Sentiment: "neutral", ShouldReply: false}, nil
	}
	if score.Sentiment == "" {
		score.Sentiment = "neutral"
	}
	return &score, nil
}

const subredditSuggestionCount = 20

func valuePropsLine(client *dal.Client) string {
	if len(client.ValueProps) == 0 {
		return "Not specified"
	}
	return strings.Join(client.ValueProps, ", ")
}

func (cg *contentGenerator) GenerateKeywords(ctx context.Context, client *dal.Client) ([]*KeywordSuggestion, error) {

	system := cg.txt.Get("generate-keywords-system.txt")
	user := cg.txt.WithVals("generate-keywords-user.txt", map[string]string{
		"productName": client.ProductName,
		"productDesc": client.ProductDescription,
		"valueProps":  valuePropsLine(client),
	})
	res, err := cg.callClaude(ctx, "generate_keywords", system, user, 2000)
	if err != nil {
		return nil, err
	}
	var raw []*KeywordSuggestion
	if err = json.Unmarshal([]byte(stripCodeFence(res)), &raw); err != nil {
		cg.logger.Warnf("Model returned unparseable keyword JSON: %v", err)
		// Still seed monitoring with the product name itself
		name := strings.ToLower(client.ProductName)
		return []*KeywordSuggestion{
			{Keyword: name, Type: "product", Priority: 10},
			{Keyword: name + " review", Type: "product", Priority: 9},
			{Keyword: name + " alternative", Type: "product", Priority: 8},
		}, nil
	}
	var validated []*KeywordSuggestion
	for _, kw := range raw {
		kw.Keyword = strings.ToLower(strings.TrimSpace(kw.Keyword))
		if kw.Keyword == "" {
			continue
		}
		if kw.Type == "" {
			kw.Type = "industry"
		}
		if kw.Priority == 0 {
			kw.Priority = 5
		}
		kw.Priority = min(10, max(1, kw.Priority))
		validated = append(validated, kw)
	}
	return validated, nil
}

func (cg *contentGenerator) SuggestSubreddits(ctx context.Context, client *dal.Client) ([]*SubredditSuggestion, error) {

	system := cg.txt.Get("suggest-subreddits-system.txt")
	user := cg.txt.WithVals("suggest-subreddits-user.txt", map[string]string{
		"numSuggestions": fmt.Sprintf("%d", subredditSuggestionCount),
		"productName":    client.ProductName,
		"productDesc":    client.ProductDescription,
		"valueProps":     valuePropsLine(client),
	})
	res, err := cg.callClaude(ctx, "suggest_subreddits", system, user, 2000)
	if err != nil {
		return nil, err
	}
	var raw []*SubredditSuggestion
	if err = json.Unmarshal([]byte(stripCodeFence(res)), &raw); err != nil {
		// Suggestions are best-effort; onboarding proceeds without them
		cg.logger.Warnf("Model returned unparseable subreddit JSON: %v", err)
		return nil, nil
	}
	var validated []*SubredditSuggestion
	for _, sub := range raw {
		sub.Name = shared.NormalizeSubreddit(sub.Name)
		if sub.Name == "" {
			continue
		}
		if sub.Relevance == 0 {
			sub.Relevance = 0.5
		}
		if sub.Category == "" {
			sub.Category = "general"
		}
		validated = append(validated, sub)
	}
	return validated, nil
}
