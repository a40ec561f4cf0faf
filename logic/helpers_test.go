package logic

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"growth_engine/dal"
	"growth_engine/shared"
)

func newTestRepo(t *testing.T) dal.IRepo {
	cfg := &shared.Config{DbFile: filepath.Join(t.TempDir(), "test.db")}
	repo := dal.NewRepo(cfg, &nullLogger{})
	repo.InitUpdateDb()
	return repo
}

type nullLogger struct{}

func (l *nullLogger) Debug(msg interface{}, keyvals ...interface{}) {}
func (l *nullLogger) Debugf(format string, args ...interface{})     {}
func (l *nullLogger) Info(msg interface{}, keyvals ...interface{})  {}
func (l *nullLogger) Infof(format string, args ...interface{})      {}
func (l *nullLogger) Warn(msg interface{}, keyvals ...interface{})  {}
func (l *nullLogger) Warnf(format string, args ...interface{})      {}
func (l *nullLogger) Error(msg interface{}, keyvals ...interface{}) {}
func (l *nullLogger) Errorf(format string, args ...interface{})     {}
func (l *nullLogger) Printf(format string, args ...interface{})     {}

type nullObserver struct{}

func (o *nullObserver) Finish() {}

type nullMetrics struct{}

func (m *nullMetrics) ServiceStarted()                                  {}
func (m *nullMetrics) StartApiRequestIn(label string) IRequestObserver  { return &nullObserver{} }
func (m *nullMetrics) StartLlmRequestOut(label string) IRequestObserver { return &nullObserver{} }
func (m *nullMetrics) AccountAction(actionType string)                  {}
func (m *nullMetrics) AccountDemoted(status string)                     {}
func (m *nullMetrics) WarmupActionPerformed(action string)              {}
func (m *nullMetrics) WarmupStageAdvanced()                             {}
func (m *nullMetrics) PostPublished()                                   {}
func (m *nullMetrics) PostFailed()                                      {}
func (m *nullMetrics) MentionFound()                                    {}
func (m *nullMetrics) MentionReplied()                                  {}
func (m *nullMetrics) MentionSkipped(reason string)                     {}
func (m *nullMetrics) ActiveAccountCount(count int)                     {}
func (m *nullMetrics) PendingPostCount(count int)                       {}

// fakeClock lets tests move time forward by hand; its sleeper advances the
// clock instead of blocking.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (fc *fakeClock) now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.cur
}

func (fc *fakeClock) advance(d time.Duration) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.cur = fc.cur.Add(d)
}

type fakeSleeper struct {
	clock *fakeClock
	slept []time.Duration
}

func (fs *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.slept = append(fs.slept, d)
	fs.clock.advance(d)
	return nil
}

// fakeSession is a hand-rolled IRedditSession with canned responses; tests
// set the fields they care about and inspect the recorded calls.
type fakeSession struct {
	username     string
	me           *RedditIdentity
	meErr        error
	submitRes    *SubmitResult
	submitErr    error
	commentRes   *SubmitResult
	commentErr   error
	voteErr      error
	hotPosts     []*RedditPostInfo
	hotErr       error
	searchRes    []*RedditPostInfo
	searchErr    error
	postDetail   *RedditPostInfo
	postComments []*RedditCommentInfo
	postErr      error
	recentRes    []*RedditCommentInfo
	commentInfo  *RedditCommentInfo

	submitted []string
	commented []string
	upvoted   []string
	saved     []string
	searches  []string
}

func (fs *fakeSession) Username() string { return fs.username }

func (fs *fakeSession) Me(ctx context.Context) (*RedditIdentity, error) {
	return fs.me, fs.meErr
}

func (fs *fakeSession) SubmitTextPost(ctx context.Context, subreddit, title, body string) (*SubmitResult, error) {
	fs.submitted = append(fs.submitted, subreddit+"|"+title)
	return fs.submitRes, fs.submitErr
}

func (fs *fakeSession) SubmitLinkPost(ctx context.Context, subreddit, title, linkUrl string) (*SubmitResult, error) {
	fs.submitted = append(fs.submitted, subreddit+"|"+title)
	return fs.submitRes, fs.submitErr
}

func (fs *fakeSession) Comment(ctx context.Context, parentFullId, text string) (*SubmitResult, error) {
	fs.commented = append(fs.commented, parentFullId)
	return fs.commentRes, fs.commentErr
}

func (fs *fakeSession) Upvote(ctx context.Context, fullId string) error {
	fs.upvoted = append(fs.upvoted, fullId)
	return fs.voteErr
}

func (fs *fakeSession) Save(ctx context.Context, fullId string) error {
	fs.saved = append(fs.saved, fullId)
	return fs.voteErr
}

func (fs *fakeSession) HotPosts(ctx context.Context, subreddit string, limit int) ([]*RedditPostInfo, error) {
	return fs.hotPosts, fs.hotErr
}

func (fs *fakeSession) SearchPosts(ctx context.Context, query, subreddits, timeFilter string, limit int) ([]*RedditPostInfo, error) {
	fs.searches = append(fs.searches, query)
	return fs.searchRes, fs.searchErr
}

func (fs *fakeSession) GetPostWithComments(ctx context.Context, postId string) (*RedditPostInfo, []*RedditCommentInfo, error) {
	return fs.postDetail, fs.postComments, fs.postErr
}

func (fs *fakeSession) RecentComments(ctx context.Context, subreddits string, limit int) ([]*RedditCommentInfo, error) {
	return fs.recentRes, nil
}

func (fs *fakeSession) CommentInfo(ctx context.Context, commentFullId string) (*RedditCommentInfo, error) {
	return fs.commentInfo, nil
}

type fakeSessionFactory struct {
	session *fakeSession
	err     error
}

func (ff *fakeSessionFactory) SessionFor(acct *dal.Account) (IRedditSession, error) {
	if ff.err != nil {
		return nil, ff.err
	}
	return ff.session, nil
}

// fakeContent is a canned IContentGenerator; tests set the fields they need.
type fakeContent struct {
	replyText  string
	replySkip  bool
	replyErr   error
	warmupText string
	warmupSkip bool
	warmupErr  error
	customized string
	postTitle  string
	postBody   string
	postErr    error
	score      *MentionScore
	scoreErr   error
	keywords   []*KeywordSuggestion
	subreddits []*SubredditSuggestion

	warmupCalls int
	replyCalls  int
	scoredPosts []string
}

func (fc *fakeContent) GenerateReply(ctx context.Context, client *dal.Client,
	subreddit, title, content string, comments []string) (string, bool, error) {
	fc.replyCalls++
	return fc.replyText, fc.replySkip, fc.replyErr
}

func (fc *fakeContent) GenerateWarmupComment(ctx context.Context,
	subreddit, title, content string) (string, bool, error) {
	fc.warmupCalls++
	return fc.warmupText, fc.warmupSkip, fc.warmupErr
}

func (fc *fakeContent) CustomizeForSubreddit(ctx context.Context,
	content, subreddit, rules string) (string, error) {
	if fc.customized != "" {
		return fc.customized, nil
	}
	return content, nil
}

func (fc *fakeContent) GeneratePost(ctx context.Context, client *dal.Client,
	subreddit, topic, postType string, includeMention bool) (string, string, error) {
	return fc.postTitle, fc.postBody, fc.postErr
}

func (fc *fakeContent) ScoreMention(ctx context.Context, client *dal.Client,
	subreddit, title, content string) (*MentionScore, error) {
	fc.scoredPosts = append(fc.scoredPosts, title)
	return fc.score, fc.scoreErr
}

func (fc *fakeContent) GenerateKeywords(ctx context.Context, client *dal.Client) ([]*KeywordSuggestion, error) {
	return fc.keywords, nil
}

func (fc *fakeContent) SuggestSubreddits(ctx context.Context, client *dal.Client) ([]*SubredditSuggestion, error) {
	return fc.subreddits, nil
}

// fixedRand returns canned values, cycling when exhausted.
type fixedRand struct {
	ints   []int
	floats []float64
	ixInt  int
	ixFlt  int
}

func (fr *fixedRand) Intn(n int) int {
	if len(fr.ints) == 0 {
		return 0
	}
	res := fr.ints[fr.ixInt%len(fr.ints)] % n
	fr.ixInt++
	return res
}

func (fr *fixedRand) Float64() float64 {
	if len(fr.floats) == 0 {
		return 0
	}
	res := fr.floats[fr.ixFlt%len(fr.floats)]
	fr.ixFlt++
	return res
}

func (fr *fixedRand) Between(min, max time.Duration) time.Duration {
	return min
}
