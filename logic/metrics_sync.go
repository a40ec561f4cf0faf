package logic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"growth_engine/dal"
	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_metrics_sync.go -package mocks growth_engine/logic IMetricsSyncer

const defaultMetricsSinceDays = 7

type SyncSummary struct {
	PostsChecked   int
	PostsRemoved   int
	RepliesChecked int
	ClientsRolled  int
	Errors         []string
}

// IMetricsSyncer refreshes live Reddit performance numbers on published posts
// and replies, and maintains the per-client daily rollup.
type IMetricsSyncer interface {
	SyncAll(ctx context.Context, sinceDays int) *SyncSummary
}

type metricsSyncer struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	sessions ISessionFactory
	metrics  IMetrics
	now      func() time.Time
}

func NewMetricsSyncer(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	sessions ISessionFactory,
	metrics IMetrics,
) IMetricsSyncer {
	return &metricsSyncer{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		sessions: sessions,
		metrics:  metrics,
		now:      time.Now,
	}
}

// removedBody reports reddit's tombstone markers on a fetched item.
func removedBody(body, author string) bool {
	body = strings.TrimSpace(body)
	return body == "[removed]" || body == "[deleted]" || author == "[deleted]"
}

func (ms *metricsSyncer) SyncAll(ctx context.Context, sinceDays int) *SyncSummary {

	summary := &SyncSummary{}
	if sinceDays <= 0 {
		sinceDays = ms.cfg.Reddit.MetricsSinceDays
	}
	if sinceDays <= 0 {
		sinceDays = defaultMetricsSinceDays
	}
	now := ms.now().UTC()
	since := now.Add(-time.Duration(sinceDays) * 24 * time.Hour)

	// Session per client, built lazily; a client without a usable account
	// just keeps its stale numbers until one comes back.
	sessionCache := map[string]IRedditSession{}
	sessionFor := func(clientId string) (IRedditSession, error) {
		if s, ok := sessionCache[clientId]; ok {
			return s, nil
		}
		accounts, err := ms.repo.GetActiveAccountsForClient(clientId)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, fmt.Errorf("client %s has no active account", clientId)
		}
		s, err := ms.sessions.SessionFor(accounts[0])
		if err != nil {
			return nil, err
		}
		sessionCache[clientId] = s
		return s, nil
	}

	posts, err := ms.repo.GetPostsForMetrics(since)
	if err != nil {
		ms.logger.Errorf("Failed to load posts for metrics sync: %v", err)
		summary.Errors = append(summary.Errors, err.Error())
		return summary
	}
	for _, post := range posts {
		if ctx.Err() != nil {
			return summary
		}
		session, err := sessionFor(post.ClientId)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", post.Id, err))
			continue
		}
		detail, _, err := session.GetPostWithComments(ctx, shared.BarePostId(post.RedditPostId))
		if err != nil {
			if ErrorKindOf(err) == ErrKindNotFound {
				// Gone entirely; treat like a removal
				detail = nil
			} else {
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", post.Id, err))
				continue
			}
		}
		summary.PostsChecked++
		status := dal.PostPosted
		upvotes, ratio, comments := post.Upvotes, post.UpvoteRatio, post.CommentsCount
		if detail == nil || removedBody(detail.Body, detail.Author) {
			status = dal.PostRemoved
			summary.PostsRemoved++
		}
		if detail != nil {
			upvotes, ratio, comments = detail.Score, detail.UpvoteRatio, detail.NumComments
		}
		if err = ms.repo.UpdatePostMetrics(post.Id, upvotes, ratio, comments, status, now); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", post.Id, err))
			continue
		}
		// Keep the in-memory copy current for the daily rollup below
		post.Upvotes, post.UpvoteRatio, post.CommentsCount, post.Status = upvotes, ratio, comments, status
	}

	replies, err := ms.repo.GetRepliesForMetrics(since)
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
	}
	for _, reply := range replies {
		if ctx.Err() != nil {
			return summary
		}
		session, err := sessionFor(reply.ClientId)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", reply.Id, err))
			continue
		}
		info, err := session.CommentInfo(ctx, shared.FullCommentId(reply.RedditCommentId))
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", reply.Id, err))
			continue
		}
		summary.RepliesChecked++
		upvotes := reply.Upvotes
		if info != nil {
			upvotes = info.Score
		}
		if err = ms.repo.UpdateReplyMetrics(reply.Id, upvotes, now); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", reply.Id, err))
		}
	}

	ms.rollUpDaily(posts, summary)
	ms.refreshGauges()
	ms.logger.Infof("Metrics sync done: %d posts (%d removed), %d replies, %d clients rolled up",
		summary.PostsChecked, summary.PostsRemoved, summary.RepliesChecked, summary.ClientsRolled)
	return summary
}

// rollUpDaily upserts today's per-client aggregate; rerunning the sync
// replaces the row rather than double counting.
func (ms *metricsSyncer) rollUpDaily(posts []*dal.ScheduledPost, summary *SyncSummary) {

	now := ms.now().UTC()
	today := now.Format(dateFormat)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	clients, err := ms.repo.GetActiveClients()
	if err != nil {
		summary.Errors = append(summary.Errors, err.Error())
		return
	}
	for _, client := range clients {
		dm := &dal.DailyMetrics{ClientId: client.Id, Date: today}
		for _, post := range posts {
			if post.ClientId != client.Id || post.PostedAt == nil || post.PostedAt.Before(dayStart) {
				continue
			}
			dm.PostsCount++
			dm.TotalUpvotes += post.Upvotes
			dm.TotalComments += post.CommentsCount
		}
		found, replied, err := ms.repo.CountMentionsSince(client.Id, dayStart)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", client.Id, err))
			continue
		}
		dm.MentionsFound, dm.MentionsReplied = found, replied
		if dm.RepliesCount, err = ms.repo.CountRepliesSince(client.Id, dayStart); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", client.Id, err))
			continue
		}
		byStatus, err := ms.repo.CountAccountsByStatus(client.Id)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", client.Id, err))
			continue
		}
		dm.AccountsActive = byStatus[dal.AccountActive]
		if err = ms.repo.UpsertDailyMetrics(dm); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", client.Id, err))
			continue
		}
		summary.ClientsRolled++
	}
}

// refreshGauges updates the coarse prometheus gauges from current db state.
func (ms *metricsSyncer) refreshGauges() {

	pending, err := ms.repo.GetPendingPosts(ms.now().UTC().Add(24 * time.Hour))
	if err == nil {
		ms.metrics.PendingPostCount(len(pending))
	}
	clients, err := ms.repo.GetActiveClients()
	if err != nil {
		return
	}
	active := 0
	for _, client := range clients {
		byStatus, err := ms.repo.CountAccountsByStatus(client.Id)
		if err != nil {
			continue
		}
		active += byStatus[dal.AccountActive]
	}
	ms.metrics.ActiveAccountCount(active)
}
