package logic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"growth_engine/dal"
	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_warmup.go -package mocks growth_engine/logic IWarmupEngine

// Warmup action weights; renormalized over whatever the stage allows.
var warmupActionWeights = map[string]float64{
	ActionUpvote:  0.6,
	ActionComment: 0.3,
	ActionSave:    0.1,
}

const hotPostsLimit = 25

const minIntraAccountDelay = 30 * time.Second
const maxIntraAccountDelay = 120 * time.Second
const minInterAccountDelay = 60 * time.Second
const maxInterAccountDelay = 300 * time.Second

type WarmupSummary struct {
	Processed        int
	ActionsPerformed int
	FullyWarmed      int
	Errors           []string
	StageCounts      map[int]int
}

type NextStageInfo struct {
	Stage          int
	DaysRequired   int
	DaysRemaining  int
	KarmaRequired  int
	KarmaRemaining int
}

type WarmupStatus struct {
	AccountId      string
	Username       string
	Status         string
	CurrentStage   int
	StageName      string
	Karma          int
	AccountAgeDays int
	IsReady        bool
	Next           *NextStageInfo
}

// IWarmupEngine ages fresh accounts into usable ones through gradually
// escalating activity in safe subreddits.
type IWarmupEngine interface {
	AdvanceStage(ctx context.Context, acct *dal.Account) (int, error)
	PerformWarmupAction(ctx context.Context, acct *dal.Account) (action string, ready bool, err error)
	ProcessWarmupAccounts(ctx context.Context) *WarmupSummary
	WarmupStatus(ctx context.Context, accountId string) (*WarmupStatus, error)
}

type warmupEngine struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	registry IAccountRegistry
	sessions ISessionFactory
	content  IContentGenerator
	metrics  IMetrics
	rnd      shared.IRand
	sleeper  shared.ISleeper
}

func NewWarmupEngine(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	registry IAccountRegistry,
	sessions ISessionFactory,
	content IContentGenerator,
	metrics IMetrics,
	rnd shared.IRand,
	sleeper shared.ISleeper,
) IWarmupEngine {
	return &warmupEngine{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		registry: registry,
		sessions: sessions,
		content:  content,
		metrics:  metrics,
		rnd:      rnd,
		sleeper:  sleeper,
	}
}

// AdvanceStage refreshes the account's stats and moves it to the highest
// stage whose age and karma thresholds it meets. Stages only ever go up;
// a karma dip never demotes an account.
func (we *warmupEngine) AdvanceStage(ctx context.Context, acct *dal.Account) (int, error) {

	if _, err := we.registry.VerifyAccount(ctx, acct); err != nil {
		return acct.WarmupStage, err
	}

	newStage := acct.WarmupStage
	for stageNum := len(we.cfg.Warmup.Stages) - 1; stageNum >= 0; stageNum-- {
		stage := we.cfg.Warmup.Stages[stageNum]
		if acct.AccountAgeDays >= stage.MinDays && acct.Karma >= stage.MinKarma {
			if stageNum > newStage {
				newStage = stageNum
			}
			break
		}
	}
	if newStage == acct.WarmupStage {
		return newStage, nil
	}

	if err := we.repo.UpdateAccountStage(acct.Id, newStage); err != nil {
		return acct.WarmupStage, err
	}
	we.logger.Infof("Account %s advanced from stage %d to %d", acct.Username, acct.WarmupStage, newStage)
	details, _ := json.Marshal(map[string]int{
		"old_stage": acct.WarmupStage, "new_stage": newStage,
		"karma": acct.Karma, "age_days": acct.AccountAgeDays,
	})
	err := we.repo.AddActivity(&dal.ActivityEntry{
		ActivityType:   "account_warmup",
		OrganizationId: acct.OrganizationId,
		ClientId:       acct.ClientId,
		AccountId:      acct.Id,
		EntityType:     "stage_change",
		Details:        string(details),
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		we.logger.Warnf("Failed to log stage change for %s: %v", acct.Username, err)
	}
	acct.WarmupStage = newStage
	we.metrics.WarmupStageAdvanced()
	return newStage, nil
}

// PerformWarmupAction runs one stage-appropriate action. A terminal-stage
// account gets promoted to active instead; ready reports that promotion.
func (we *warmupEngine) PerformWarmupAction(ctx context.Context, acct *dal.Account) (string, bool, error) {

	stage, err := we.AdvanceStage(ctx, acct)
	if err != nil {
		return "", false, err
	}

	if stage >= dal.TerminalWarmupStage {
		if err = we.repo.UpdateAccountStatus(acct.Id, dal.AccountActive, ""); err != nil {
			return "", false, err
		}
		acct.Status = dal.AccountActive
		we.logger.Infof("Account %s is fully warmed up and now active", acct.Username)
		return "", true, nil
	}

	allowed := we.cfg.Warmup.Stages[stage].Actions
	if len(allowed) == 0 {
		// Stage 0 accounts just age; nothing to do
		return "", false, nil
	}

	session, err := we.sessions.SessionFor(acct)
	if err != nil {
		return "", false, err
	}

	subreddit := we.cfg.Warmup.SafeSubreddits[we.rnd.Intn(len(we.cfg.Warmup.SafeSubreddits))]
	hot, err := session.HotPosts(ctx, subreddit, hotPostsLimit)
	if err != nil {
		we.registry.HandleAccountError(acct, err)
		return "", false, err
	}
	post := we.pickPost(hot)
	if post == nil {
		return "", false, fmt.Errorf("no posts found in r/%s", subreddit)
	}

	action := we.pickAction(allowed)
	if action == "" {
		return "", false, fmt.Errorf("no valid actions for stage %d", stage)
	}

	switch action {
	case ActionUpvote:
		err = session.Upvote(ctx, post.FullId)
	case ActionSave:
		err = session.Save(ctx, post.FullId)
	case ActionComment:
		var text string
		var skip bool
		text, skip, err = we.content.GenerateWarmupComment(ctx, subreddit, post.Title, post.Body)
		if err == nil {
			if skip {
				// Nothing worth saying; an upvote keeps the account moving
				action = ActionUpvote
				err = session.Upvote(ctx, post.FullId)
			} else {
				_, err = session.Comment(ctx, post.FullId, text)
			}
		}
	}
	if err != nil {
		we.registry.HandleAccountError(acct, err)
		return "", false, err
	}

	if err = we.registry.RecordAction(acct, action, post.FullId); err != nil {
		return "", false, err
	}
	we.metrics.WarmupActionPerformed(action)
	we.logger.Debugf("Account %s: %s in r/%s", acct.Username, action, subreddit)
	return action, false, nil
}

func (we *warmupEngine) pickPost(posts []*RedditPostInfo) *RedditPostInfo {
	if len(posts) == 0 {
		return nil
	}
	// Prefer organic posts with live discussions
	var suitable []*RedditPostInfo
	for _, p := range posts {
		if !p.Stickied && p.NumComments > 5 {
			suitable = append(suitable, p)
		}
	}
	if len(suitable) == 0 {
		for _, p := range posts {
			if !p.Stickied {
				suitable = append(suitable, p)
			}
		}
	}
	if len(suitable) == 0 {
		suitable = posts
	}
	return suitable[we.rnd.Intn(len(suitable))]
}

// pickAction draws a weighted random action from what the stage allows;
// "all" opens up the full set.
func (we *warmupEngine) pickAction(allowed []string) string {

	allowsAll := false
	allowedSet := map[string]bool{}
	for _, a := range allowed {
		if a == "all" {
			allowsAll = true
		}
		allowedSet[a] = true
	}

	var actions []string
	var total float64
	for _, a := range []string{ActionUpvote, ActionComment, ActionSave} {
		if allowsAll || allowedSet[a] {
			actions = append(actions, a)
			total += warmupActionWeights[a]
		}
	}
	if len(actions) == 0 {
		return ""
	}
	r := we.rnd.Float64() * total
	cumulative := 0.0
	for _, a := range actions {
		cumulative += warmupActionWeights[a]
		if r <= cumulative {
			return a
		}
	}
	return actions[len(actions)-1]
}

// ProcessWarmupAccounts walks every warming-up account, performs 1-3 actions
// each, and paces itself with humanlike delays. Individual account failures
// are recorded and do not stop the batch.
func (we *warmupEngine) ProcessWarmupAccounts(ctx context.Context) *WarmupSummary {

	summary := &WarmupSummary{StageCounts: map[int]int{}}
	accounts, err := we.repo.GetAccountsForWarmup()
	if err != nil {
		we.logger.Errorf("Failed to load accounts for warmup: %v", err)
		summary.Errors = append(summary.Errors, err.Error())
		return summary
	}
	we.logger.Infof("Processing warmup for %d accounts", len(accounts))

	for i, acct := range accounts {
		if ctx.Err() != nil {
			break
		}
		summary.Processed++
		summary.StageCounts[acct.WarmupStage]++

		numActions := 1 + we.rnd.Intn(3)
		for j := 0; j < numActions; j++ {
			_, ready, err := we.PerformWarmupAction(ctx, acct)
			if err != nil {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("%s: %v", acct.Username, err))
				break
			}
			if ready {
				summary.FullyWarmed++
				break
			}
			summary.ActionsPerformed++
			if j < numActions-1 {
				if err = we.sleeper.Sleep(ctx, we.rnd.Between(minIntraAccountDelay, maxIntraAccountDelay)); err != nil {
					return summary
				}
			}
		}
		if i < len(accounts)-1 {
			if err := we.sleeper.Sleep(ctx, we.rnd.Between(minInterAccountDelay, maxInterAccountDelay)); err != nil {
				return summary
			}
		}
	}

	we.logger.Infof("Finished warmup processing: %d actions, %d now ready, %d errors",
		summary.ActionsPerformed, summary.FullyWarmed, len(summary.Errors))
	return summary
}

func (we *warmupEngine) WarmupStatus(ctx context.Context, accountId string) (*WarmupStatus, error) {

	acct, err := we.repo.GetAccount(accountId)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}
	// Fresh stats make the progress numbers honest, but stale ones will do
	if _, err = we.AdvanceStage(ctx, acct); err != nil {
		we.logger.Warnf("Cannot refresh stats of account %s: %v", acct.Username, err)
	}

	stages := we.cfg.Warmup.Stages
	res := &WarmupStatus{
		AccountId:      acct.Id,
		Username:       acct.Username,
		Status:         acct.Status,
		CurrentStage:   acct.WarmupStage,
		StageName:      stages[acct.WarmupStage].Name,
		Karma:          acct.Karma,
		AccountAgeDays: acct.AccountAgeDays,
		IsReady:        acct.WarmupStage >= dal.TerminalWarmupStage,
	}
	if !res.IsReady {
		next := acct.WarmupStage + 1
		nextStage := stages[next]
		res.Next = &NextStageInfo{
			Stage:          next,
			DaysRequired:   nextStage.MinDays,
			DaysRemaining:  max(0, nextStage.MinDays-acct.AccountAgeDays),
			KarmaRequired:  nextStage.MinKarma,
			KarmaRemaining: max(0, nextStage.MinKarma-acct.Karma),
		}
	}
	return res, nil
}
