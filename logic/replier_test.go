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

type replierFixture struct {
	engine  *replyEngine
	repo    dal.IRepo
	cfg     *shared.Config
	clock   *fakeClock
	session *fakeSession
	content *fakeContent
	sleeper *fakeSleeper
}

func newReplierFixture(t *testing.T) *replierFixture {
	repo := newTestRepo(t)
	cfg := &shared.Config{
		Reddit: shared.RedditLimits{
			CallsPerMinute:     60,
			MinCooldownMinutes: 0,
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
	content := &fakeContent{replyText: "Have you looked at AcmeBot? (I work on it.)"}
	sleeper := &fakeSleeper{clock: clock}
	engine := &replyEngine{
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
	rf := &replierFixture{engine, repo, cfg, clock, session, content, sleeper}
	require.NoError(t, repo.AddClient(&dal.Client{
		Id: "cli-1", OrganizationId: "org-1", Name: "Acme", Status: "active",
		ProductName: "AcmeBot", CreatedAt: clock.now(),
	}))
	require.NoError(t, repo.AddKeyword(&dal.Keyword{
		Id: "kw-1", ClientId: "cli-1", Keyword: "acmebot", IsActive: true,
	}))
	return rf
}

func (rf *replierFixture) addMention(t *testing.T, id, redditId, postType, author string) *dal.Mention {
	m := &dal.Mention{
		Id: id, OrganizationId: "org-1", ClientId: "cli-1", KeywordId: "kw-1",
		RedditPostId: redditId, DedupHash: DedupHash(redditId), Subreddit: "widgets",
		PostTitle: "Need a sorting tool", PostContent: "Any recommendations?",
		PostAuthor: author, PostType: postType,
		DetectedAt: rf.clock.now().Add(-time.Hour),
		RelevanceScore: 0.8, Sentiment: "question", ShouldReply: true,
	}
	isNew, err := rf.repo.AddMentionIfNew(m)
	require.NoError(t, err)
	require.True(t, isNew)
	return m
}

func TestReplyToSubmissionMention(t *testing.T) {
	rf := newReplierFixture(t)
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	mention := rf.addMention(t, "m-1", "t3_aaa", "submission", "curious_cat")
	rf.session.postDetail = &RedditPostInfo{Id: "aaa", FullId: "t3_aaa",
		Title: "Need a sorting tool", Body: "Any recommendations?"}
	rf.session.postComments = []*RedditCommentInfo{
		{Id: "cm1", FullId: "t1_cm1", Body: "Spreadsheets work", Author: "someone_else"},
	}
	rf.session.commentRes = &SubmitResult{Id: "rep1", FullId: "t1_rep1", Url: "https://reddit.com/rep1"}

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Replied)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, rf.session.commented, 1)
	assert.Equal(t, "t3_aaa", rf.session.commented[0])

	stored, err := rf.repo.GetMention(mention.Id)
	require.NoError(t, err)
	assert.True(t, stored.Replied)
	assert.NotEmpty(t, stored.ReplyId)
	require.NotNil(t, stored.RepliedAt)

	// Out of the queue, keyword credited, daily counter bumped
	queue, _ := rf.repo.GetUnrepliedMentions("cli-1", 10)
	assert.Empty(t, queue)
	kws, _ := rf.repo.GetKeywordsForClient("cli-1", true)
	assert.Equal(t, 1, kws[0].ReplyCount)
	acct, _ := rf.repo.GetAccount("acc-1")
	assert.Equal(t, 1, acct.DailyReplies)
}

func TestReplyToCommentMention(t *testing.T) {
	rf := newReplierFixture(t)
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	rf.addMention(t, "m-1", "t1_cm9", "comment", "helpful")
	rf.session.commentRes = &SubmitResult{Id: "rep1", FullId: "t1_rep1", Url: "u"}

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Replied)
	require.Len(t, rf.session.commented, 1)
	assert.Equal(t, "t1_cm9", rf.session.commented[0])
}

func TestReplySkipsOwnPost(t *testing.T) {
	rf := newReplierFixture(t)
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	mention := rf.addMention(t, "m-1", "t3_aaa", "submission", "u_acc-1")

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Replied)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, rf.session.commented)

	stored, _ := rf.repo.GetMention(mention.Id)
	assert.Equal(t, SkipOwnPost, stored.SkipReason)
	assert.False(t, stored.Replied)
}

func TestReplySkipsWhenAlreadyInThread(t *testing.T) {
	rf := newReplierFixture(t)
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	mention := rf.addMention(t, "m-1", "t3_aaa", "submission", "curious_cat")
	rf.session.postComments = []*RedditCommentInfo{
		{Id: "cm1", FullId: "t1_cm1", Body: "We already answered", Author: "U_ACC-1"},
	}

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, rf.session.commented)
	assert.Equal(t, 0, rf.content.replyCalls)

	stored, _ := rf.repo.GetMention(mention.Id)
	assert.Equal(t, SkipAlreadyReplied, stored.SkipReason)
}

func TestReplyModelDeclines(t *testing.T) {
	rf := newReplierFixture(t)
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	mention := rf.addMention(t, "m-1", "t3_aaa", "submission", "curious_cat")
	rf.content.replySkip = true

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Errors)
	assert.Empty(t, rf.session.commented)

	stored, _ := rf.repo.GetMention(mention.Id)
	assert.Equal(t, SkipModelDeclined, stored.SkipReason)
	queue, _ := rf.repo.GetUnrepliedMentions("cli-1", 10)
	assert.Empty(t, queue)
}

func TestReplyFailureIsFinal(t *testing.T) {
	rf := newReplierFixture(t)
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	mention := rf.addMention(t, "m-1", "t3_aaa", "submission", "curious_cat")
	rf.session.commentErr = mapRedditError(errors.New("RATELIMIT: slow down"))

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 0) // skip with reason, not a batch error

	stored, _ := rf.repo.GetMention(mention.Id)
	assert.Contains(t, stored.SkipReason, "reply failed")
	queue, _ := rf.repo.GetUnrepliedMentions("cli-1", 10)
	assert.Empty(t, queue)

	// Rate limiting during a reply is an account-level signal
	acct, _ := rf.repo.GetAccount("acc-1")
	assert.Equal(t, dal.AccountRateLimited, acct.Status)
}

func TestReplyStopsWhenDailyCapReached(t *testing.T) {
	rf := newReplierFixture(t)
	rf.cfg.Reddit.MaxDailyReplies = 1
	addActiveAccount(t, rf.repo, "acc-1", "cli-1", rf.clock.now().Add(-24*time.Hour))
	rf.addMention(t, "m-1", "t3_aaa", "submission", "cat_one")
	rf.addMention(t, "m-2", "t3_bbb", "submission", "cat_two")
	rf.session.commentRes = &SubmitResult{Id: "rep1", FullId: "t1_rep1", Url: "u"}

	summary, err := rf.engine.ProcessUnrepliedMentions(context.Background(), "cli-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Replied)
	assert.Equal(t, 1, summary.Considered)

	// The second mention stays queued for tomorrow
	queue, _ := rf.repo.GetUnrepliedMentions("cli-1", 10)
	assert.Len(t, queue, 1)
}
