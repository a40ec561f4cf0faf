package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth_engine/dal"
	"growth_engine/shared"
)

type posterFixture struct {
	scheduler *postScheduler
	repo      dal.IRepo
	clock     *fakeClock
	session   *fakeSession
	content   *fakeContent
	sleeper   *fakeSleeper
}

func newPosterFixture(t *testing.T) *posterFixture {
	repo := newTestRepo(t)
	cfg := &shared.Config{
		Reddit: shared.RedditLimits{
			CallsPerMinute:     60,
			MinCooldownMinutes: 30,
			MaxDailyPosts:      3,
			MaxDailyReplies:    5,
		},
	}
	cfg.Secrets.EncryptionKey = testFernetKey
	clock := newFakeClock()
	session := &fakeSession{}
	factory := &fakeSessionFactory{session: session}
	registry := &accountRegistry{
		cfg:      cfg,
		logger:   &nullLogger{},
		repo:     repo,
		vault:    NewVault(cfg, &nullLogger{}),
		sessions: factory,
		metrics:  &nullMetrics{},
		now:      clock.now,
	}
	content := &fakeContent{}
	sleeper := &fakeSleeper{clock: clock}
	scheduler := &postScheduler{
		cfg:      cfg,
		logger:   &nullLogger{},
		repo:     repo,
		registry: registry,
		sessions: factory,
		content:  content,
		metrics:  &nullMetrics{},
		rnd:      &fixedRand{ints: []int{0}, floats: []float64{0.1}},
		sleeper:  sleeper,
		now:      clock.now,
	}
	return &posterFixture{scheduler, repo, clock, session, content, sleeper}
}

func (pf *posterFixture) addClient(t *testing.T, id string) {
	require.NoError(t, pf.repo.AddClient(&dal.Client{
		Id: id, OrganizationId: "org-1", Name: "Acme", Status: "active",
		ProductName: "AcmeBot", CreatedAt: pf.clock.now(),
	}))
}

func (pf *posterFixture) addSubreddit(t *testing.T, id, clientId, name string) {
	require.NoError(t, pf.repo.AddSubreddit(&dal.Subreddit{
		Id: id, ClientId: clientId, Name: name, IsActive: true,
	}))
}

func (pf *posterFixture) addDuePost(t *testing.T, id, clientId, subredditId string) *dal.ScheduledPost {
	post := &dal.ScheduledPost{
		Id: id, ClientId: clientId, SubredditId: subredditId,
		Title: "Title " + id, Content: "Body of " + id, ContentType: "text",
		Status: dal.PostScheduled, GeneratedBy: "manual",
		ScheduledAt: pf.clock.now().Add(-time.Minute),
		CreatedAt:   pf.clock.now().Add(-time.Hour),
	}
	require.NoError(t, pf.repo.AddPost(post))
	return post
}

func TestCreateScheduledPost(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	when := pf.clock.now().Add(2 * time.Hour)

	post, err := pf.scheduler.CreateScheduledPost("cli-1", "sub-1",
		"  Launch notes  ", "We shipped.", "", "", "manual", when)
	require.NoError(t, err)
	assert.Equal(t, "Launch notes", post.Title)
	assert.Equal(t, "text", post.ContentType)
	assert.Equal(t, dal.PostScheduled, post.Status)

	stored, err := pf.repo.GetPost(post.Id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, when.UTC(), stored.ScheduledAt.UTC())
}

func TestCreateDraftPost(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")

	post, err := pf.scheduler.CreateScheduledPost("cli-1", "sub-1",
		"Launch notes", "We shipped.", "", "", "ai", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, dal.PostDraft, post.Status)

	// Drafts are invisible to the pending-post job
	pending, err := pf.repo.GetPendingPosts(pf.clock.now().Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateScheduledPostValidation(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addClient(t, "cli-2")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	when := pf.clock.now().Add(time.Hour)

	_, err := pf.scheduler.CreateScheduledPost("cli-1", "sub-1", "  ", "body", "text", "", "", when)
	assert.ErrorContains(t, err, "title")

	_, err = pf.scheduler.CreateScheduledPost("cli-1", "sub-1", "t", "b", "video", "", "", when)
	assert.ErrorContains(t, err, "content type")

	_, err = pf.scheduler.CreateScheduledPost("cli-1", "sub-1", "t", "", "link", "", "", when)
	assert.ErrorContains(t, err, "link URL")

	// A subreddit belonging to another client is off-limits
	_, err = pf.scheduler.CreateScheduledPost("cli-2", "sub-1", "t", "b", "text", "", "", when)
	assert.ErrorContains(t, err, "not found")
}

func TestProcessPendingPosts(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	addActiveAccount(t, pf.repo, "acc-1", "cli-1", pf.clock.now().Add(-24*time.Hour))
	post := pf.addDuePost(t, "post-1", "cli-1", "sub-1")
	pf.session.submitRes = &SubmitResult{Id: "abc", FullId: "t3_abc", Url: "https://reddit.com/r/widgets/abc"}

	summary := pf.scheduler.ProcessPendingPosts(context.Background(), 0)
	assert.Equal(t, 1, summary.Due)
	assert.Equal(t, 1, summary.Posted)
	assert.Empty(t, summary.Errors)

	stored, err := pf.repo.GetPost(post.Id)
	require.NoError(t, err)
	assert.Equal(t, dal.PostPosted, stored.Status)
	assert.Equal(t, "abc", stored.RedditPostId)
	assert.Equal(t, "acc-1", stored.AccountId)
	require.NotNil(t, stored.PostedAt)

	sub, _ := pf.repo.GetSubreddit("sub-1")
	assert.Equal(t, 1, sub.PostsCount)

	acct, _ := pf.repo.GetAccount("acc-1")
	assert.Equal(t, 1, acct.DailyPosts)
	require.NotNil(t, acct.LastActionAt)
}

func TestProcessPendingPostsNoAccountDefers(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	post := pf.addDuePost(t, "post-1", "cli-1", "sub-1")

	summary := pf.scheduler.ProcessPendingPosts(context.Background(), 0)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Posted)

	// Still scheduled; the next run picks it up again
	stored, _ := pf.repo.GetPost(post.Id)
	assert.Equal(t, dal.PostScheduled, stored.Status)
	assert.Empty(t, pf.session.submitted)
}

func TestProcessPendingPostsSubmitFailureIsFinal(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	addActiveAccount(t, pf.repo, "acc-1", "cli-1", pf.clock.now().Add(-24*time.Hour))
	post := pf.addDuePost(t, "post-1", "cli-1", "sub-1")
	pf.session.submitErr = mapRedditError(errors.New("SUBREDDIT_NOTALLOWED: not allowed to post there"))

	summary := pf.scheduler.ProcessPendingPosts(context.Background(), 0)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)

	stored, _ := pf.repo.GetPost(post.Id)
	assert.Equal(t, dal.PostFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "SUBREDDIT_NOTALLOWED")

	// One rejected post says nothing about the account
	acct, _ := pf.repo.GetAccount("acc-1")
	assert.Equal(t, dal.AccountActive, acct.Status)
	assert.Equal(t, 0, acct.DailyPosts)
}

func TestProcessPendingPostsRateLimitedLeavesAccountAlone(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	addActiveAccount(t, pf.repo, "acc-1", "cli-1", pf.clock.now().Add(-24*time.Hour))
	post := pf.addDuePost(t, "post-1", "cli-1", "sub-1")
	pf.session.submitErr = mapRedditError(errors.New("RATELIMIT: you are doing that too much"))

	summary := pf.scheduler.ProcessPendingPosts(context.Background(), 0)
	assert.Equal(t, 1, summary.Failed)

	stored, _ := pf.repo.GetPost(post.Id)
	assert.Equal(t, dal.PostFailed, stored.Status)
	assert.Contains(t, stored.ErrorMessage, "RATELIMIT")

	// Even a rate-limit rejection never demotes the account here; only the
	// warmup and reply paths react to it
	acct, _ := pf.repo.GetAccount("acc-1")
	assert.Equal(t, dal.AccountActive, acct.Status)
	assert.Equal(t, 0, acct.DailyPosts)
}

func TestProcessPendingPostsSharedAccountCooldown(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	addActiveAccount(t, pf.repo, "acc-1", "cli-1", pf.clock.now().Add(-24*time.Hour))
	first := pf.addDuePost(t, "post-1", "cli-1", "sub-1")
	second := &dal.ScheduledPost{
		Id: "post-2", ClientId: "cli-1", SubredditId: "sub-1",
		Title: "Second", Content: "b", ContentType: "text",
		Status: dal.PostScheduled, ScheduledAt: pf.clock.now().Add(-30 * time.Second),
		CreatedAt: pf.clock.now().Add(-time.Hour),
	}
	require.NoError(t, pf.repo.AddPost(second))
	pf.session.submitRes = &SubmitResult{Id: "abc", FullId: "t3_abc", Url: "u"}

	// The single account posts once and then sits in cooldown
	summary := pf.scheduler.ProcessPendingPosts(context.Background(), 0)
	assert.Equal(t, 1, summary.Posted)
	assert.Equal(t, 1, summary.Skipped)

	stored, _ := pf.repo.GetPost(first.Id)
	assert.Equal(t, dal.PostPosted, stored.Status)
	stored, _ = pf.repo.GetPost(second.Id)
	assert.Equal(t, dal.PostScheduled, stored.Status)

	// One inter-post pause
	require.Len(t, pf.sleeper.slept, 1)
	assert.Equal(t, minInterPostDelay, pf.sleeper.slept[0])
}

func TestProcessPendingPostsLimit(t *testing.T) {
	pf := newPosterFixture(t)
	pf.addClient(t, "cli-1")
	pf.addSubreddit(t, "sub-1", "cli-1", "widgets")
	for _, id := range []string{"post-1", "post-2", "post-3"} {
		pf.addDuePost(t, id, "cli-1", "sub-1")
	}

	summary := pf.scheduler.ProcessPendingPosts(context.Background(), 2)
	assert.Equal(t, 2, summary.Due)
}
