package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"growth_engine/dal"
	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_poster.go -package mocks growth_engine/logic IPostScheduler

const minInterPostDelay = 5 * time.Second
const maxInterPostDelay = 15 * time.Second

type PostingSummary struct {
	Due     int
	Posted  int
	Failed  int
	Skipped int
	Errors  []string
}

// IPostScheduler publishes due scheduled posts and accepts new ones.
type IPostScheduler interface {
	ProcessPendingPosts(ctx context.Context, limit int) *PostingSummary
	CreateScheduledPost(clientId, subredditId, title, content, contentType, linkUrl,
		generatedBy string, scheduledAt time.Time) (*dal.ScheduledPost, error)
}

type postScheduler struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	registry IAccountRegistry
	sessions ISessionFactory
	content  IContentGenerator
	metrics  IMetrics
	rnd      shared.IRand
	sleeper  shared.ISleeper
	now      func() time.Time
}

func NewPostScheduler(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	registry IAccountRegistry,
	sessions ISessionFactory,
	content IContentGenerator,
	metrics IMetrics,
	rnd shared.IRand,
	sleeper shared.ISleeper,
) IPostScheduler {
	return &postScheduler{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		registry: registry,
		sessions: sessions,
		content:  content,
		metrics:  metrics,
		rnd:      rnd,
		sleeper:  sleeper,
		now:      time.Now,
	}
}

// ProcessPendingPosts publishes every scheduled post that has come due, up to
// limit. A post with no available account goes back to the queue; a submit
// failure is final. Submit failures never change the account's status: one
// rejected post says nothing about the account's health.
func (ps *postScheduler) ProcessPendingPosts(ctx context.Context, limit int) *PostingSummary {

	summary := &PostingSummary{}
	pending, err := ps.repo.GetPendingPosts(ps.now().UTC())
	if err != nil {
		ps.logger.Errorf("Failed to load pending posts: %v", err)
		summary.Errors = append(summary.Errors, err.Error())
		return summary
	}
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	summary.Due = len(pending)
	if len(pending) == 0 {
		return summary
	}
	ps.logger.Infof("Publishing %d due posts", len(pending))

	for i, post := range pending {
		if ctx.Err() != nil {
			break
		}
		if err := ps.publishOne(ctx, post, summary); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", post.Id, err))
		}
		if i < len(pending)-1 {
			if err := ps.sleeper.Sleep(ctx, ps.rnd.Between(minInterPostDelay, maxInterPostDelay)); err != nil {
				return summary
			}
		}
	}
	ps.logger.Infof("Finished publishing: %d posted, %d failed, %d skipped",
		summary.Posted, summary.Failed, summary.Skipped)
	return summary
}

func (ps *postScheduler) publishOne(ctx context.Context, post *dal.ScheduledPost, summary *PostingSummary) error {

	claimed, err := ps.repo.ClaimPostForPosting(post.Id)
	if err != nil {
		return err
	}
	if !claimed {
		// Someone else got here first
		summary.Skipped++
		return nil
	}

	acct, err := ps.registry.GetAvailableAccount(post.ClientId, ActionPost)
	if err != nil {
		return ps.failPost(post, err)
	}
	if acct == nil {
		// Back in the queue; the next run may have a free account
		ps.logger.Infof("No account available for post %s; deferring", post.Id)
		summary.Skipped++
		return ps.repo.UpdatePostStatus(post.Id, dal.PostScheduled, "no account available")
	}

	sub, err := ps.repo.GetSubreddit(post.SubredditId)
	if err != nil {
		return ps.failPost(post, err)
	}
	if sub == nil {
		summary.Failed++
		return ps.failPost(post, fmt.Errorf("subreddit %s not found", post.SubredditId))
	}

	session, err := ps.sessions.SessionFor(acct)
	if err != nil {
		return ps.failPost(post, err)
	}

	var res *SubmitResult
	if post.ContentType == "link" {
		res, err = session.SubmitLinkPost(ctx, sub.Name, post.Title, post.LinkUrl)
	} else {
		content := post.Content
		// Best-effort tailoring to the subreddit's rules and voice
		content, _ = ps.content.CustomizeForSubreddit(ctx, content, sub.Name, sub.RulesSummary)
		res, err = session.SubmitTextPost(ctx, sub.Name, post.Title, content)
	}
	if err != nil {
		summary.Failed++
		ps.metrics.PostFailed()
		return ps.failPost(post, err)
	}

	now := ps.now().UTC()
	if err = ps.repo.MarkPostPosted(post.Id, acct.Id, res.Id, res.Url, now); err != nil {
		return err
	}
	if err = ps.repo.IncrementSubredditPosts(sub.Id, now); err != nil {
		ps.logger.Warnf("Failed to bump post counter of r/%s: %v", sub.Name, err)
	}
	if err = ps.registry.RecordAction(acct, ActionPost, post.Id); err != nil {
		ps.logger.Warnf("Failed to record post action for %s: %v", acct.Username, err)
	}
	ps.logActivity(post, acct.Id, "post_published", map[string]string{
		"reddit_post_id": res.Id, "url": res.Url, "subreddit": sub.Name,
	})
	ps.metrics.PostPublished()
	summary.Posted++
	ps.logger.Infof("Posted %q to r/%s as %s", post.Title, sub.Name, acct.Username)
	return nil
}

func (ps *postScheduler) failPost(post *dal.ScheduledPost, cause error) error {
	ps.logger.Warnf("Post %s failed: %v", post.Id, cause)
	if err := ps.repo.UpdatePostStatus(post.Id, dal.PostFailed, cause.Error()); err != nil {
		return err
	}
	ps.logActivity(post, post.AccountId, "post_failed", map[string]string{"error": cause.Error()})
	return cause
}

func (ps *postScheduler) logActivity(post *dal.ScheduledPost, accountId, activityType string, details map[string]string) {
	detailsJson, _ := json.Marshal(details)
	err := ps.repo.AddActivity(&dal.ActivityEntry{
		ActivityType: activityType,
		ClientId:     post.ClientId,
		AccountId:    accountId,
		EntityType:   "post",
		EntityId:     post.Id,
		Details:      string(detailsJson),
		CreatedAt:    ps.now().UTC(),
	})
	if err != nil {
		ps.logger.Warnf("Failed to log %s for post %s: %v", activityType, post.Id, err)
	}
}

// CreateScheduledPost validates and enqueues a post for later publication.
// A zero scheduledAt stores the post as a draft that the pending-post job
// leaves alone until someone schedules it.
func (ps *postScheduler) CreateScheduledPost(clientId, subredditId, title, content,
	contentType, linkUrl, generatedBy string, scheduledAt time.Time) (*dal.ScheduledPost, error) {

	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("post title is required")
	}
	if contentType == "" {
		contentType = "text"
	}
	if contentType != "text" && contentType != "link" {
		return nil, fmt.Errorf("unknown content type %q", contentType)
	}
	if contentType == "link" && strings.TrimSpace(linkUrl) == "" {
		return nil, fmt.Errorf("link posts need a link URL")
	}
	client, err := ps.repo.GetClient(clientId)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client %s not found", clientId)
	}
	sub, err := ps.repo.GetSubreddit(subredditId)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.ClientId != clientId {
		return nil, fmt.Errorf("subreddit %s not found for client %s", subredditId, clientId)
	}
	if generatedBy == "" {
		generatedBy = "manual"
	}
	status := dal.PostScheduled
	if scheduledAt.IsZero() {
		status = dal.PostDraft
	}

	post := &dal.ScheduledPost{
		Id:          uuid.NewString(),
		ClientId:    clientId,
		SubredditId: subredditId,
		Title:       strings.TrimSpace(title),
		Content:     content,
		ContentType: contentType,
		LinkUrl:     linkUrl,
		Status:      status,
		GeneratedBy: generatedBy,
		ScheduledAt: scheduledAt.UTC(),
		CreatedAt:   ps.now().UTC(),
	}
	if err = ps.repo.AddPost(post); err != nil {
		return nil, err
	}
	if status == dal.PostDraft {
		ps.logActivity(post, "", "post_created", map[string]string{"subreddit": sub.Name})
		ps.logger.Infof("Saved draft post %q for r/%s", post.Title, sub.Name)
		return post, nil
	}
	ps.logActivity(post, "", "post_scheduled", map[string]string{
		"subreddit": sub.Name, "scheduled_at": post.ScheduledAt.Format(time.RFC3339),
	})
	ps.logger.Infof("Scheduled post %q for r/%s at %s", post.Title, sub.Name,
		post.ScheduledAt.Format(time.RFC3339))
	return post, nil
}
