package logic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"growth_engine/dal"
	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_accounts.go -package mocks growth_engine/logic IAccountRegistry

// Action types recorded against accounts.
const (
	ActionPost    = "post"
	ActionReply   = "reply"
	ActionComment = "comment"
	ActionUpvote  = "upvote"
	ActionSave    = "save"
)

const dateFormat = "2006-01-02"

// IAccountRegistry owns account selection, onboarding and bookkeeping.
// Selection respects per-account cooldowns and daily caps so no single
// account burns through its allowance.
type IAccountRegistry interface {
	OnboardAccount(orgId, clientId, username, password, redditClientId, redditClientSecret string) (*dal.Account, error)
	GetAvailableAccount(clientId, actionType string) (*dal.Account, error)
	RecordAction(acct *dal.Account, actionType, entityId string) error
	VerifyAccount(ctx context.Context, acct *dal.Account) (*RedditIdentity, error)
	HandleAccountError(acct *dal.Account, err error) bool
}

type accountRegistry struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	vault    IVault
	sessions ISessionFactory
	metrics  IMetrics
	now      func() time.Time
}

func NewAccountRegistry(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	vault IVault,
	sessions ISessionFactory,
	metrics IMetrics,
) IAccountRegistry {
	return &accountRegistry{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		vault:    vault,
		sessions: sessions,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (ar *accountRegistry) OnboardAccount(orgId, clientId, username, password,
	redditClientId, redditClientSecret string) (*dal.Account, error) {

	existing, err := ar.repo.GetAccountByUsername(clientId, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		ar.logger.Infof("Account %s already onboarded for client %s", username, clientId)
		return existing, nil
	}

	encrypted, err := ar.vault.Encrypt(password)
	if err != nil {
		return nil, err
	}
	acct := &dal.Account{
		Id:                 uuid.NewString(),
		OrganizationId:     orgId,
		ClientId:           clientId,
		Username:           username,
		PasswordEncrypted:  encrypted,
		RedditClientId:     redditClientId,
		RedditClientSecret: redditClientSecret,
		Status:             dal.AccountWarmingUp,
		WarmupStage:        0,
		CreatedAt:          ar.now().UTC(),
	}
	if err = ar.repo.AddAccount(acct); err != nil {
		return nil, err
	}
	ar.logger.Infof("Onboarded account %s for client %s; starting warmup", username, clientId)
	return acct, nil
}

// GetAvailableAccount picks the oldest active account of the client that is
// off cooldown and under its daily cap for the given action type. Returns
// nil when every account is busy or capped.
func (ar *accountRegistry) GetAvailableAccount(clientId, actionType string) (*dal.Account, error) {

	accounts, err := ar.repo.GetActiveAccountsForClient(clientId)
	if err != nil {
		return nil, err
	}
	now := ar.now().UTC()
	cooldown := time.Duration(ar.cfg.Reddit.MinCooldownMinutes) * time.Minute
	for _, acct := range accounts {
		if acct.LastActionAt != nil && now.Sub(*acct.LastActionAt) < cooldown {
			continue
		}
		if ar.dailyCapReached(acct, actionType, now) {
			continue
		}
		return acct, nil
	}
	return nil, nil
}

func (ar *accountRegistry) dailyCapReached(acct *dal.Account, actionType string, now time.Time) bool {
	// Stale counters belong to a previous day and don't count
	if acct.DailyActionDate != now.Format(dateFormat) {
		return false
	}
	switch actionType {
	case ActionPost:
		return acct.DailyPosts >= ar.cfg.Reddit.MaxDailyPosts
	case ActionReply, ActionComment:
		return acct.DailyReplies >= ar.cfg.Reddit.MaxDailyReplies
	}
	return false
}

func (ar *accountRegistry) RecordAction(acct *dal.Account, actionType, entityId string) error {

	now := ar.now().UTC()
	isPost := actionType == ActionPost
	isReply := actionType == ActionReply || actionType == ActionComment
	err := ar.repo.RecordAccountAction(acct.Id, now.Format(dateFormat), isPost, isReply, now)
	if err != nil {
		return err
	}
	details, _ := json.Marshal(map[string]string{"action": actionType, "entity": entityId})
	err = ar.repo.AddActivity(&dal.ActivityEntry{
		ActivityType:   "account_action",
		OrganizationId: acct.OrganizationId,
		ClientId:       acct.ClientId,
		AccountId:      acct.Id,
		EntityType:     actionType,
		EntityId:       entityId,
		Details:        string(details),
		CreatedAt:      now,
	})
	if err != nil {
		ar.logger.Warnf("Failed to log activity for account %s: %v", acct.Username, err)
	}
	ar.metrics.AccountAction(actionType)
	return nil
}

// VerifyAccount refreshes karma and account age from reddit's identity
// endpoint and demotes the account if reddit reports it suspended.
func (ar *accountRegistry) VerifyAccount(ctx context.Context, acct *dal.Account) (*RedditIdentity, error) {

	session, err := ar.sessions.SessionFor(acct)
	if err != nil {
		return nil, err
	}
	me, err := session.Me(ctx)
	if err != nil {
		ar.HandleAccountError(acct, err)
		return nil, err
	}
	ageDays := int(ar.now().UTC().Sub(me.CreatedAt).Hours() / 24)
	if err = ar.repo.UpdateAccountStats(acct.Id, me.TotalKarma, ageDays, ar.now().UTC()); err != nil {
		return nil, err
	}
	acct.Karma = me.TotalKarma
	acct.AccountAgeDays = ageDays
	if me.IsSuspended {
		ar.logger.Warnf("Account %s is suspended", acct.Username)
		if err = ar.repo.UpdateAccountStatus(acct.Id, dal.AccountSuspended, "reported suspended by reddit"); err != nil {
			return nil, err
		}
		acct.Status = dal.AccountSuspended
	}
	return me, nil
}

// HandleAccountError demotes the account on failures that indicate an
// account-level problem; item-level failures leave the account alone.
// Returns true when the account status changed.
func (ar *accountRegistry) HandleAccountError(acct *dal.Account, err error) bool {

	var status string
	switch ErrorKindOf(err) {
	case ErrKindRateLimited:
		status = dal.AccountRateLimited
	case ErrKindAuth:
		status = dal.AccountShadowbanned
	default:
		return false
	}
	ar.logger.Warnf("Demoting account %s to %s: %v", acct.Username, status, err)
	if dbErr := ar.repo.UpdateAccountStatus(acct.Id, status, err.Error()); dbErr != nil {
		ar.logger.Errorf("Failed to update status of account %s: %v", acct.Username, dbErr)
		return false
	}
	acct.Status = status
	ar.metrics.AccountDemoted(status)
	return true
}
