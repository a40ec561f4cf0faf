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

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_replier.go -package mocks growth_engine/logic IReplyEngine

const minInterReplyDelay = 10 * time.Second
const maxInterReplyDelay = 30 * time.Second

const defaultReplyBatch = 10

// Skip reasons recorded on mentions that will never get a reply.
const (
	SkipOwnPost        = "own_post"
	SkipAlreadyReplied = "already_replied"
	SkipModelDeclined  = "model_declined"
)

type ReplySummary struct {
	Considered int
	Replied    int
	Skipped    int
	Errors     []string
}

// IReplyEngine works through triaged mentions and posts replies. Every
// outcome is terminal: a mention is replied to, or skipped with a reason;
// nothing is retried.
type IReplyEngine interface {
	ProcessUnrepliedMentions(ctx context.Context, clientId string, limit int) (*ReplySummary, error)
	ProcessAllClients(ctx context.Context) *ReplySummary
}

type replyEngine struct {
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

func NewReplyEngine(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	registry IAccountRegistry,
	sessions ISessionFactory,
	content IContentGenerator,
	metrics IMetrics,
	rnd shared.IRand,
	sleeper shared.ISleeper,
) IReplyEngine {
	return &replyEngine{
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

func (re *replyEngine) ProcessUnrepliedMentions(ctx context.Context, clientId string, limit int) (*ReplySummary, error) {

	summary := &ReplySummary{}
	client, err := re.repo.GetClient(clientId)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("client %s not found", clientId)
	}
	if limit <= 0 {
		limit = defaultReplyBatch
	}
	mentions, err := re.repo.GetUnrepliedMentions(clientId, limit)
	if err != nil {
		return nil, err
	}
	if len(mentions) == 0 {
		return summary, nil
	}
	re.logger.Infof("Processing %d unreplied mentions for %s", len(mentions), client.Name)

	ownUsernames, err := re.clientUsernames(clientId)
	if err != nil {
		return nil, err
	}

	for i, mention := range mentions {
		if ctx.Err() != nil {
			break
		}
		summary.Considered++

		acct, err := re.registry.GetAvailableAccount(clientId, ActionReply)
		if err != nil {
			return summary, err
		}
		if acct == nil {
			// All accounts busy or capped; the rest of the batch waits
			re.logger.Infof("No account available to reply for %s; stopping batch", client.Name)
			summary.Considered--
			break
		}

		replied, err := re.replyToMention(ctx, client, acct, mention, ownUsernames)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", mention.Id, err))
			summary.Skipped++
		} else if replied {
			summary.Replied++
		} else {
			summary.Skipped++
		}

		if i < len(mentions)-1 {
			if err := re.sleeper.Sleep(ctx, re.rnd.Between(minInterReplyDelay, maxInterReplyDelay)); err != nil {
				return summary, nil
			}
		}
	}
	re.logger.Infof("Finished replies for %s: %d replied, %d skipped", client.Name,
		summary.Replied, summary.Skipped)
	return summary, nil
}

func (re *replyEngine) clientUsernames(clientId string) (map[string]bool, error) {
	accounts, err := re.repo.GetActiveAccountsForClient(clientId)
	if err != nil {
		return nil, err
	}
	res := map[string]bool{}
	for _, a := range accounts {
		res[strings.ToLower(a.Username)] = true
	}
	return res, nil
}

// replyToMention posts one reply; false without error means the mention was
// skipped with a recorded reason.
func (re *replyEngine) replyToMention(ctx context.Context, client *dal.Client, acct *dal.Account,
	mention *dal.Mention, ownUsernames map[string]bool) (bool, error) {

	if ownUsernames[strings.ToLower(mention.PostAuthor)] {
		// One of our own accounts wrote this; replying to ourselves helps no one
		return false, re.skipMention(mention, SkipOwnPost, SkipOwnPost)
	}

	session, err := re.sessions.SessionFor(acct)
	if err != nil {
		return false, err
	}

	title := mention.PostTitle
	body := mention.PostContent
	var threadComments []string
	parentType := "comment"
	if mention.PostType == "submission" {
		parentType = "post"
		post, comments, err := session.GetPostWithComments(ctx, shared.BarePostId(mention.RedditPostId))
		if err != nil {
			return false, re.skipMention(mention, fmt.Sprintf("thread fetch failed: %v", err), "fetch_failed")
		}
		if post != nil {
			title, body = post.Title, post.Body
		}
		for _, c := range comments {
			if ownUsernames[strings.ToLower(c.Author)] {
				re.logger.Infof("Already replied in thread of mention %s; skipping", mention.Id)
				return false, re.skipMention(mention, SkipAlreadyReplied, SkipAlreadyReplied)
			}
			threadComments = append(threadComments, c.Body)
		}
	}

	text, skip, err := re.content.GenerateReply(ctx, client, mention.Subreddit, title, body, threadComments)
	if err != nil {
		return false, re.skipMention(mention, fmt.Sprintf("generation failed: %v", err), "generation_failed")
	}
	if skip {
		// The model judged a reply unwelcome here; that is a verdict, not a failure
		return false, re.skipMention(mention, SkipModelDeclined, SkipModelDeclined)
	}

	res, err := session.Comment(ctx, mention.RedditPostId, text)
	if err != nil {
		re.registry.HandleAccountError(acct, err)
		return false, re.skipMention(mention, fmt.Sprintf("reply failed: %v", err), "reply_failed")
	}

	now := re.now().UTC()
	reply := &dal.Reply{
		Id:              uuid.NewString(),
		ClientId:        client.Id,
		AccountId:       acct.Id,
		MentionId:       mention.Id,
		RedditCommentId: res.Id,
		RedditUrl:       res.Url,
		ParentType:      parentType,
		ParentRedditId:  mention.RedditPostId,
		Content:         text,
		Status:          "posted",
		PostedAt:        &now,
	}
	if err = re.repo.AddReply(reply); err != nil {
		return false, err
	}
	if err = re.repo.MarkMentionReplied(mention.Id, reply.Id, now); err != nil {
		return false, err
	}
	if mention.KeywordId != "" {
		if err = re.repo.IncrementKeywordReplies(mention.KeywordId); err != nil {
			re.logger.Warnf("Failed to bump reply counter of keyword %s: %v", mention.KeywordId, err)
		}
	}
	if err = re.registry.RecordAction(acct, ActionReply, reply.Id); err != nil {
		re.logger.Warnf("Failed to record reply action for %s: %v", acct.Username, err)
	}
	details, _ := json.Marshal(map[string]string{
		"reddit_comment_id": res.Id, "subreddit": mention.Subreddit,
	})
	err = re.repo.AddActivity(&dal.ActivityEntry{
		ActivityType:   "reply_posted",
		OrganizationId: mention.OrganizationId,
		ClientId:       client.Id,
		AccountId:      acct.Id,
		EntityType:     "mention",
		EntityId:       mention.Id,
		Details:        string(details),
		CreatedAt:      now,
	})
	if err != nil {
		re.logger.Warnf("Failed to log reply for mention %s: %v", mention.Id, err)
	}
	re.metrics.MentionReplied()
	re.logger.Infof("Replied to mention in r/%s as %s", mention.Subreddit, acct.Username)
	return true, nil
}

func (re *replyEngine) skipMention(mention *dal.Mention, reason, metricLabel string) error {
	re.metrics.MentionSkipped(metricLabel)
	return re.repo.MarkMentionSkipped(mention.Id, reason)
}

// ProcessAllClients replies for every active client; failures are isolated.
func (re *replyEngine) ProcessAllClients(ctx context.Context) *ReplySummary {

	total := &ReplySummary{}
	clients, err := re.repo.GetActiveClients()
	if err != nil {
		re.logger.Errorf("Failed to load clients for replies: %v", err)
		total.Errors = append(total.Errors, err.Error())
		return total
	}
	for _, client := range clients {
		if ctx.Err() != nil {
			break
		}
		summary, err := re.ProcessUnrepliedMentions(ctx, client.Id, 0)
		if err != nil {
			total.Errors = append(total.Errors, fmt.Sprintf("%s: %v", client.Name, err))
			continue
		}
		total.Considered += summary.Considered
		total.Replied += summary.Replied
		total.Skipped += summary.Skipped
		total.Errors = append(total.Errors, summary.Errors...)
	}
	return total
}
