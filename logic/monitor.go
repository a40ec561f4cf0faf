package logic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"growth_engine/dal"
	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_monitor.go -package mocks growth_engine/logic IMentionMonitor

type ScanSummary struct {
	ClientsScanned  int
	KeywordsScanned int
	CandidatesSeen  int
	NewMentions     int
	Errors          []string
}

// IMentionMonitor finds fresh Reddit posts and comments that mention a
// client's keywords, triages them, and records them as mentions.
type IMentionMonitor interface {
	ScanClient(ctx context.Context, clientId string) (*ScanSummary, error)
	ScanAllClients(ctx context.Context) *ScanSummary
}

type mentionMonitor struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	sessions ISessionFactory
	content  IContentGenerator
	metrics  IMetrics
	sleeper  shared.ISleeper
	now      func() time.Time
}

func NewMentionMonitor(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	sessions ISessionFactory,
	content IContentGenerator,
	metrics IMetrics,
	sleeper shared.ISleeper,
) IMentionMonitor {
	return &mentionMonitor{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		sessions: sessions,
		content:  content,
		metrics:  metrics,
		sleeper:  sleeper,
		now:      time.Now,
	}
}

// mentionCandidate is one keyword hit before triage; hits on the same reddit
// item across keywords are merged into a single candidate.
type mentionCandidate struct {
	redditId   string // fullname, t3_ or t1_
	url        string
	subreddit  string
	title      string
	content    string
	author     string
	postType   string
	score      int
	comments   int
	keywords   []string
	keywordIds []string
}

func (mc *mentionCandidate) addKeyword(kw *dal.Keyword) {
	for _, k := range mc.keywords {
		if k == kw.Keyword {
			return
		}
	}
	mc.keywords = append(mc.keywords, kw.Keyword)
	mc.keywordIds = append(mc.keywordIds, kw.Id)
}

// DedupHash is the indexed short form of a mention's reddit id, for cheap
// existence probes before the unique-key insert.
func DedupHash(redditId string) int64 {
	return int64(murmur3.Sum64([]byte(redditId)))
}

func (mm *mentionMonitor) ScanClient(ctx context.Context, clientId string) (*ScanSummary, error) {

	summary := &ScanSummary{ClientsScanned: 1}
	client, err := mm.repo.GetClient(clientId)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client %s not found", clientId)
	}
	keywords, err := mm.repo.GetKeywordsForClient(clientId, true)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		mm.logger.Debugf("Client %s has no active keywords", client.Name)
		return summary, nil
	}

	subs, err := mm.repo.GetSubredditsForClient(clientId, true)
	if err != nil {
		return nil, err
	}
	var subNames []string
	for _, s := range subs {
		subNames = append(subNames, s.Name)
	}
	restrictTo := strings.Join(subNames, "+")

	session, err := mm.searchSession(clientId)
	if err != nil {
		return nil, err
	}

	candidates := map[string]*mentionCandidate{}
	for i, kw := range keywords {
		if ctx.Err() != nil {
			break
		}
		summary.KeywordsScanned++
		if err := mm.scanKeyword(ctx, session, kw, restrictTo, candidates); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", kw.Keyword, err))
		}
		if err := mm.repo.UpdateKeywordScanned(kw.Id, mm.now().UTC()); err != nil {
			mm.logger.Warnf("Failed to mark keyword %q scanned: %v", kw.Keyword, err)
		}
		if i < len(keywords)-1 && mm.cfg.Monitor.SearchDelayMsec > 0 {
			delay := time.Duration(mm.cfg.Monitor.SearchDelayMsec) * time.Millisecond
			if err := mm.sleeper.Sleep(ctx, delay); err != nil {
				return summary, nil
			}
		}
	}

	summary.CandidatesSeen = len(candidates)
	for _, cand := range candidates {
		if ctx.Err() != nil {
			break
		}
		isNew, err := mm.recordMention(ctx, client, cand)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", cand.redditId, err))
			continue
		}
		if isNew {
			summary.NewMentions++
		}
	}
	mm.logger.Infof("Scanned %d keywords for %s: %d candidates, %d new mentions",
		summary.KeywordsScanned, client.Name, summary.CandidatesSeen, summary.NewMentions)
	return summary, nil
}

// searchSession picks any active account of the client for read-only
// searching; this does not count against the account's action budget.
func (mm *mentionMonitor) searchSession(clientId string) (IRedditSession, error) {
	accounts, err := mm.repo.GetActiveAccountsForClient(clientId)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("client %s has no active account to search with", clientId)
	}
	return mm.sessions.SessionFor(accounts[0])
}

func (mm *mentionMonitor) scanKeyword(ctx context.Context, session IRedditSession,
	kw *dal.Keyword, restrictTo string, candidates map[string]*mentionCandidate) error {

	posts, err := session.SearchPosts(ctx, kw.Keyword, restrictTo,
		mm.cfg.Monitor.TimeFilter, mm.cfg.Monitor.LimitPerKeyword)
	if err != nil {
		return err
	}
	needle := strings.ToLower(kw.Keyword)
	for _, p := range posts {
		// Reddit search is fuzzy; keep only literal matches
		if !strings.Contains(strings.ToLower(p.Title+" "+p.Body), needle) {
			continue
		}
		cand, ok := candidates[p.FullId]
		if !ok {
			cand = &mentionCandidate{
				redditId:  p.FullId,
				url:       shared.PermalinkUrl(p.Permalink),
				subreddit: p.Subreddit,
				title:     p.Title,
				content:   p.Body,
				author:    p.Author,
				postType:  "submission",
				score:     p.Score,
				comments:  p.NumComments,
			}
			candidates[p.FullId] = cand
		}
		cand.addKeyword(kw)
	}

	if !mm.cfg.Monitor.IncludeComments || restrictTo == "" {
		return nil
	}
	comments, err := session.RecentComments(ctx, restrictTo, mm.cfg.Monitor.LimitPerKeyword)
	if err != nil {
		// Comment feed is a bonus signal; submission hits already landed
		mm.logger.Warnf("Comment scan failed for %q: %v", kw.Keyword, err)
		return nil
	}
	for _, c := range comments {
		if !strings.Contains(strings.ToLower(c.Body), needle) {
			continue
		}
		cand, ok := candidates[c.FullId]
		if !ok {
			cand = &mentionCandidate{
				redditId:  c.FullId,
				url:       shared.PermalinkUrl(c.Permalink),
				subreddit: c.Subreddit,
				content:   c.Body,
				author:    c.Author,
				postType:  "comment",
				score:     c.Score,
			}
			candidates[c.FullId] = cand
		}
		cand.addKeyword(kw)
	}
	return nil
}

func (mm *mentionMonitor) recordMention(ctx context.Context, client *dal.Client,
	cand *mentionCandidate) (bool, error) {

	hash := DedupHash(cand.redditId)
	exists, err := mm.repo.MentionExists(client.Id, hash, cand.redditId)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	score, err := mm.content.ScoreMention(ctx, client, cand.subreddit, cand.title, cand.content)
	if err != nil {
		// Unscored mentions are kept but never auto-replied
		mm.logger.Warnf("Failed to score mention %s: %v", cand.redditId, err)
		score = &MentionScore{RelevanceScore: 0.5, Sentiment: "neutral", ShouldReply: false}
	}

	now := mm.now().UTC()
	isNew, err := mm.repo.AddMentionIfNew(&dal.Mention{
		Id:              uuid.NewString(),
		OrganizationId:  client.OrganizationId,
		ClientId:        client.Id,
		KeywordId:       cand.keywordIds[0],
		RedditPostId:    cand.redditId,
		DedupHash:       hash,
		RedditUrl:       cand.url,
		Subreddit:       cand.subreddit,
		PostTitle:       cand.title,
		PostContent:     cand.content,
		PostAuthor:      cand.author,
		PostType:        cand.postType,
		PostScore:       cand.score,
		PostComments:    cand.comments,
		DetectedAt:      now,
		RelevanceScore:  score.RelevanceScore,
		Sentiment:       score.Sentiment,
		ShouldReply:     score.ShouldReply,
		MatchedKeywords: cand.keywords,
	})
	if err != nil || !isNew {
		return false, err
	}
	for _, kwId := range cand.keywordIds {
		if err := mm.repo.IncrementKeywordMentions(kwId, 1, now); err != nil {
			mm.logger.Warnf("Failed to bump mention counter of keyword %s: %v", kwId, err)
		}
	}
	mm.metrics.MentionFound()
	return true, nil
}

// ScanAllClients runs a scan for every active client; one client's failure
// never blocks the others.
func (mm *mentionMonitor) ScanAllClients(ctx context.Context) *ScanSummary {

	total := &ScanSummary{}
	clients, err := mm.repo.GetActiveClients()
	if err != nil {
		mm.logger.Errorf("Failed to load clients for mention scan: %v", err)
		total.Errors = append(total.Errors, err.Error())
		return total
	}
	for _, client := range clients {
		if ctx.Err() != nil {
			break
		}
		summary, err := mm.ScanClient(ctx, client.Id)
		if err != nil {
			total.Errors = append(total.Errors, fmt.Sprintf("%s: %v", client.Name, err))
			continue
		}
		total.ClientsScanned += summary.ClientsScanned
		total.KeywordsScanned += summary.KeywordsScanned
		total.CandidatesSeen += summary.CandidatesSeen
		total.NewMentions += summary.NewMentions
		total.Errors = append(total.Errors, summary.Errors...)
	}
	return total
}
