package logic

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"growth_engine/dal"
	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_reddit_session.go -package mocks growth_engine/logic IRedditSession,ISessionFactory

type RedditIdentity struct {
	Username    string
	TotalKarma  int
	CreatedAt   time.Time
	IsSuspended bool
}

type RedditPostInfo struct {
	Id          string
	FullId      string
	Title       string
	Body        string
	Author      string
	Subreddit   string
	Permalink   string
	Score       int
	UpvoteRatio float64
	NumComments int
	Stickied    bool
	IsSelf      bool
	Created     time.Time
}

type RedditCommentInfo struct {
	Id        string
	FullId    string
	Body      string
	Author    string
	Subreddit string
	Permalink string
	ParentId  string
	PostId    string
	Score     int
	Created   time.Time
}

type SubmitResult struct {
	Id     string
	FullId string
	Url    string
}

// IRedditSession is an authenticated API session for one account. Every call
// blocks on the account's rate limit slot before hitting reddit, and every
// failure comes back as a *RedditError.
type IRedditSession interface {
	Username() string
	Me(ctx context.Context) (*RedditIdentity, error)
	SubmitTextPost(ctx context.Context, subreddit, title, body string) (*SubmitResult, error)
	SubmitLinkPost(ctx context.Context, subreddit, title, linkUrl string) (*SubmitResult, error)
	Comment(ctx context.Context, parentFullId, text string) (*SubmitResult, error)
	Upvote(ctx context.Context, fullId string) error
	Save(ctx context.Context, fullId string) error
	HotPosts(ctx context.Context, subreddit string, limit int) ([]*RedditPostInfo, error)
	SearchPosts(ctx context.Context, query, subreddits, timeFilter string, limit int) ([]*RedditPostInfo, error)
	GetPostWithComments(ctx context.Context, postId string) (*RedditPostInfo, []*RedditCommentInfo, error)
	RecentComments(ctx context.Context, subreddits string, limit int) ([]*RedditCommentInfo, error)
	CommentInfo(ctx context.Context, commentFullId string) (*RedditCommentInfo, error)
}

// ISessionFactory builds sessions from stored accounts, decrypting their
// credentials on the way.
type ISessionFactory interface {
	SessionFor(acct *dal.Account) (IRedditSession, error)
}

type sessionFactory struct {
	cfg       *shared.Config
	logger    shared.ILogger
	vault     IVault
	limiter   IRateLimiter
	userAgent shared.IUserAgent
}

func NewSessionFactory(
	cfg *shared.Config,
	logger shared.ILogger,
	vault IVault,
	limiter IRateLimiter,
	userAgent shared.IUserAgent,
) ISessionFactory {
	return &sessionFactory{
		cfg:       cfg,
		logger:    logger,
		vault:     vault,
		limiter:   limiter,
		userAgent: userAgent,
	}
}

func (sf *sessionFactory) SessionFor(acct *dal.Account) (IRedditSession, error) {

	password, err := sf.vault.Decrypt(acct.PasswordEncrypted)
	if err != nil {
		sf.logger.Errorf("Cannot decrypt credentials of account %s: %v", acct.Username, err)
		return nil, err
	}
	ua := acct.UserAgent
	if ua == "" {
		ua = sf.userAgent.Value()
	}
	client, err := reddit.NewClient(reddit.Credentials{
		ID:       acct.RedditClientId,
		Secret:   acct.RedditClientSecret,
		Username: acct.Username,
		Password: password,
	}, reddit.WithUserAgent(ua))
	if err != nil {
		return nil, mapRedditError(err)
	}
	return &redditSession{
		client:    client,
		accountId: acct.Id,
		username:  acct.Username,
		limiter:   sf.limiter,
		logger:    sf.logger,
	}, nil
}

type redditSession struct {
	client    *reddit.Client
	accountId string
	username  string
	limiter   IRateLimiter
	logger    shared.ILogger
}

func (rs *redditSession) Username() string {
	return rs.username
}

// pace blocks until the account has a free rate limit slot, then claims it.
func (rs *redditSession) pace(ctx context.Context) error {
	if err := rs.limiter.WaitIfNeeded(ctx, rs.accountId); err != nil {
		return err
	}
	rs.limiter.RecordCall(rs.accountId)
	return nil
}

type meResponse struct {
	Name        string  `json:"name"`
	TotalKarma  int     `json:"total_karma"`
	CreatedUtc  float64 `json:"created_utc"`
	IsSuspended bool    `json:"is_suspended"`
}

func (rs *redditSession) Me(ctx context.Context) (*RedditIdentity, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	req, err := rs.client.NewRequest(http.MethodGet, "api/v1/me", nil)
	if err != nil {
		return nil, mapRedditError(err)
	}
	var me meResponse
	if _, err = rs.client.Do(ctx, req, &me); err != nil {
		return nil, mapRedditError(err)
	}
	return &RedditIdentity{
		Username:    me.Name,
		TotalKarma:  me.TotalKarma,
		CreatedAt:   time.Unix(int64(me.CreatedUtc), 0).UTC(),
		IsSuspended: me.IsSuspended,
	}, nil
}

func (rs *redditSession) SubmitTextPost(ctx context.Context, subreddit, title, body string) (*SubmitResult, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	post, _, err := rs.client.Post.SubmitText(ctx, reddit.SubmitTextRequest{
		Subreddit: subreddit,
		Title:     title,
		Text:      body,
	})
	if err != nil {
		return nil, mapRedditError(err)
	}
	return &SubmitResult{Id: post.ID, FullId: post.FullID, Url: post.URL}, nil
}

func (rs *redditSession) SubmitLinkPost(ctx context.Context, subreddit, title, linkUrl string) (*SubmitResult, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	post, _, err := rs.client.Post.SubmitLink(ctx, reddit.SubmitLinkRequest{
		Subreddit: subreddit,
		Title:     title,
		URL:       linkUrl,
	})
	if err != nil {
		return nil, mapRedditError(err)
	}
	return &SubmitResult{Id: post.ID, FullId: post.FullID, Url: post.URL}, nil
}

func (rs *redditSession) Comment(ctx context.Context, parentFullId, text string) (*SubmitResult, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	comment, _, err := rs.client.Comment.Submit(ctx, parentFullId, text)
	if err != nil {
		return nil, mapRedditError(err)
	}
	return &SubmitResult{
		Id:     comment.ID,
		FullId: comment.FullID,
		Url:    shared.PermalinkUrl(comment.Permalink),
	}, nil
}

func (rs *redditSession) Upvote(ctx context.Context, fullId string) error {

	if err := rs.pace(ctx); err != nil {
		return err
	}
	if _, err := rs.client.Post.Upvote(ctx, fullId); err != nil {
		return mapRedditError(err)
	}
	return nil
}

func (rs *redditSession) Save(ctx context.Context, fullId string) error {

	if err := rs.pace(ctx); err != nil {
		return err
	}
	if _, err := rs.client.Post.Save(ctx, fullId); err != nil {
		return mapRedditError(err)
	}
	return nil
}

func (rs *redditSession) HotPosts(ctx context.Context, subreddit string, limit int) ([]*RedditPostInfo, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	posts, _, err := rs.client.Subreddit.HotPosts(ctx, subreddit, &reddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, mapRedditError(err)
	}
	return convertPosts(posts), nil
}

func (rs *redditSession) SearchPosts(ctx context.Context, query, subreddits, timeFilter string, limit int) ([]*RedditPostInfo, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	opts := &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: limit},
			Time:        timeFilter,
		},
		Sort: "new",
	}
	posts, _, err := rs.client.Subreddit.SearchPosts(ctx, query, subreddits, opts)
	if err != nil {
		return nil, mapRedditError(err)
	}
	return convertPosts(posts), nil
}

func (rs *redditSession) GetPostWithComments(ctx context.Context, postId string) (*RedditPostInfo, []*RedditCommentInfo, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, nil, err
	}
	pc, _, err := rs.client.Post.Get(ctx, shared.BarePostId(postId))
	if err != nil {
		return nil, nil, mapRedditError(err)
	}
	var comments []*RedditCommentInfo
	for _, c := range pc.Comments {
		comments = append(comments, convertComment(c))
	}
	return convertPost(pc.Post), comments, nil
}

// Raw listing envelope for the endpoints go-reddit has no wrapper for.
type rawListing struct {
	Data struct {
		Children []struct {
			Kind string         `json:"kind"`
			Data rawCommentData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type rawCommentData struct {
	Id         string  `json:"id"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	Permalink  string  `json:"permalink"`
	ParentId   string  `json:"parent_id"`
	LinkId     string  `json:"link_id"`
	Score      int     `json:"score"`
	CreatedUtc float64 `json:"created_utc"`
}

// RecentComments pulls the newest comments across subreddits ("sub1+sub2").
// go-reddit has no wrapper for the subreddit comment feed, so this goes
// through the client's raw request plumbing.
func (rs *redditSession) RecentComments(ctx context.Context, subreddits string, limit int) ([]*RedditCommentInfo, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("r/%s/comments?limit=%d", subreddits, limit)
	req, err := rs.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, mapRedditError(err)
	}
	var listing rawListing
	if _, err = rs.client.Do(ctx, req, &listing); err != nil {
		return nil, mapRedditError(err)
	}
	var res []*RedditCommentInfo
	for _, child := range listing.Data.Children {
		if child.Kind != shared.KindComment {
			continue
		}
		res = append(res, convertRawComment(&child.Data))
	}
	return res, nil
}

func (rs *redditSession) CommentInfo(ctx context.Context, commentFullId string) (*RedditCommentInfo, error) {

	if err := rs.pace(ctx); err != nil {
		return nil, err
	}
	req, err := rs.client.NewRequest(http.MethodGet, "api/info?id="+commentFullId, nil)
	if err != nil {
		return nil, mapRedditError(err)
	}
	var listing rawListing
	if _, err = rs.client.Do(ctx, req, &listing); err != nil {
		return nil, mapRedditError(err)
	}
	if len(listing.Data.Children) == 0 {
		return nil, nil
	}
	return convertRawComment(&listing.Data.Children[0].Data), nil
}

func convertPost(p *reddit.Post) *RedditPostInfo {
	res := &RedditPostInfo{
		Id:          p.ID,
		FullId:      p.FullID,
		Title:       p.Title,
		Body:        p.Body,
		Author:      p.Author,
		Subreddit:   p.SubredditName,
		Permalink:   shared.PermalinkUrl(p.Permalink),
		Score:       p.Score,
		UpvoteRatio: float64(p.UpvoteRatio),
		NumComments: p.NumberOfComments,
		Stickied:    p.Stickied,
		IsSelf:      p.IsSelfPost,
	}
	if p.Created != nil {
		res.Created = p.Created.Time
	}
	return res
}

func convertPosts(posts []*reddit.Post) []*RedditPostInfo {
	var res []*RedditPostInfo
	for _, p := range posts {
		res = append(res, convertPost(p))
	}
	return res
}

func convertComment(c *reddit.Comment) *RedditCommentInfo {
	res := &RedditCommentInfo{
		Id:        c.ID,
		FullId:    c.FullID,
		Body:      c.Body,
		Author:    c.Author,
		Subreddit: c.SubredditName,
		Permalink: shared.PermalinkUrl(c.Permalink),
		ParentId:  c.ParentID,
		PostId:    c.PostID,
		Score:     c.Score,
	}
	if c.Created != nil {
		res.Created = c.Created.Time
	}
	return res
}

func convertRawComment(c *rawCommentData) *RedditCommentInfo {
	return &RedditCommentInfo{
		Id:        c.Id,
		FullId:    c.Name,
		Body:      c.Body,
		Author:    c.Author,
		Subreddit: c.Subreddit,
		Permalink: shared.PermalinkUrl(c.Permalink),
		ParentId:  c.ParentId,
		PostId:    c.LinkId,
		Score:     c.Score,
		Created:   time.Unix(int64(c.CreatedUtc), 0).UTC(),
	}
}
