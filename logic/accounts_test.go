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

func testRegistry(t *testing.T, factory ISessionFactory) (*accountRegistry, dal.IRepo, *fakeClock) {
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
	ar := &accountRegistry{
		cfg:      cfg,
		logger:   &nullLogger{},
		repo:     repo,
		vault:    NewVault(cfg, &nullLogger{}),
		sessions: factory,
		metrics:  &nullMetrics{},
		now:      clock.now,
	}
	return ar, repo, clock
}

func TestOnboardAccount(t *testing.T) {
	ar, repo, _ := testRegistry(t, &fakeSessionFactory{})

	acct, err := ar.OnboardAccount("org-1", "cli-1", "fresh_face", "hunter2", "cid", "csecret")
	require.NoError(t, err)
	assert.Equal(t, dal.AccountWarmingUp, acct.Status)
	assert.Equal(t, 0, acct.WarmupStage)
	assert.NotEqual(t, "hunter2", acct.PasswordEncrypted)

	// Credentials decrypt back to the original
	plain, err := ar.vault.Decrypt(acct.PasswordEncrypted)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)

	// Onboarding again is a no-op returning the stored account
	again, err := ar.OnboardAccount("org-1", "cli-1", "fresh_face", "different", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, acct.Id, again.Id)

	stored, err := repo.GetAccountByUsername("cli-1", "fresh_face")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func addActiveAccount(t *testing.T, repo dal.IRepo, id, clientId string, createdAt time.Time) *dal.Account {
	acct := &dal.Account{
		Id: id, OrganizationId: "org-1", ClientId: clientId, Username: "u_" + id,
		PasswordEncrypted: "tok", RedditClientId: "cid", RedditClientSecret: "cs",
		Status: dal.AccountActive, WarmupStage: dal.TerminalWarmupStage, CreatedAt: createdAt,
	}
	require.NoError(t, repo.AddAccount(acct))
	return acct
}

func TestGetAvailableAccountCooldown(t *testing.T) {
	ar, repo, clock := testRegistry(t, &fakeSessionFactory{})

	base := clock.now().Add(-24 * time.Hour)
	addActiveAccount(t, repo, "acc-1", "cli-1", base)
	addActiveAccount(t, repo, "acc-2", "cli-1", base.Add(time.Hour))

	// Oldest account wins when both are idle
	acct, err := ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, "acc-1", acct.Id)

	// acc-1 acts; within cooldown the next pick is acc-2
	require.NoError(t, ar.RecordAction(acct, ActionPost, "post-1"))
	acct, err = ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, "acc-2", acct.Id)

	// Both on cooldown: nothing available
	acct2, _ := ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, ar.RecordAction(acct2, ActionPost, "post-2"))
	acct, err = ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, err)
	assert.Nil(t, acct)

	// Cooldown expires
	clock.advance(31 * time.Minute)
	acct, err = ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.Equal(t, "acc-1", acct.Id)
}

func TestGetAvailableAccountDailyCaps(t *testing.T) {
	ar, repo, clock := testRegistry(t, &fakeSessionFactory{})

	base := clock.now().Add(-24 * time.Hour)
	addActiveAccount(t, repo, "acc-1", "cli-1", base)

	// Burn through the daily post cap, waiting out the cooldown each time
	for i := 0; i < 3; i++ {
		acct, err := ar.GetAvailableAccount("cli-1", ActionPost)
		require.NoError(t, err)
		require.NotNil(t, acct, "iteration %d", i)
		require.NoError(t, ar.RecordAction(acct, ActionPost, "post"))
		clock.advance(31 * time.Minute)
	}

	acct, err := ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, err)
	assert.Nil(t, acct)

	// Reply cap is independent of the post cap
	acct, err = ar.GetAvailableAccount("cli-1", ActionReply)
	require.NoError(t, err)
	assert.NotNil(t, acct)

	// Next day the counters roll over
	clock.advance(24 * time.Hour)
	acct, err = ar.GetAvailableAccount("cli-1", ActionPost)
	require.NoError(t, err)
	assert.NotNil(t, acct)
}

func TestVerifyAccountUpdatesStats(t *testing.T) {
	clock := newFakeClock()
	session := &fakeSession{
		me: &RedditIdentity{
			Username:   "u_acc-1",
			TotalKarma: 123,
			CreatedAt:  clock.now().Add(-10 * 24 * time.Hour),
		},
	}
	ar, repo, _ := testRegistry(t, &fakeSessionFactory{session: session})
	acct := addActiveAccount(t, repo, "acc-1", "cli-1", clock.now().Add(-24*time.Hour))

	me, err := ar.VerifyAccount(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, 123, me.TotalKarma)

	stored, err := repo.GetAccount("acc-1")
	require.NoError(t, err)
	assert.Equal(t, 123, stored.Karma)
	assert.Equal(t, 10, stored.AccountAgeDays)
	assert.Equal(t, dal.AccountActive, stored.Status)
	require.NotNil(t, stored.LastVerifiedAt)
}

func TestVerifyAccountSuspended(t *testing.T) {
	clock := newFakeClock()
	session := &fakeSession{
		me: &RedditIdentity{
			Username: "u_acc-1", TotalKarma: 5,
			CreatedAt: clock.now().Add(-48 * time.Hour), IsSuspended: true,
		},
	}
	ar, repo, _ := testRegistry(t, &fakeSessionFactory{session: session})
	acct := addActiveAccount(t, repo, "acc-1", "cli-1", clock.now().Add(-24*time.Hour))

	_, err := ar.VerifyAccount(context.Background(), acct)
	require.NoError(t, err)

	stored, err := repo.GetAccount("acc-1")
	require.NoError(t, err)
	assert.Equal(t, dal.AccountSuspended, stored.Status)
}

func TestHandleAccountError(t *testing.T) {
	ar, repo, clock := testRegistry(t, &fakeSessionFactory{})
	acct := addActiveAccount(t, repo, "acc-1", "cli-1", clock.now().Add(-24*time.Hour))

	// Item-level failures leave the account alone
	changed := ar.HandleAccountError(acct, mapRedditError(errors.New("SUBREDDIT_NOEXIST: nope")))
	assert.False(t, changed)
	stored, _ := repo.GetAccount("acc-1")
	assert.Equal(t, dal.AccountActive, stored.Status)

	// Rate limit demotes
	changed = ar.HandleAccountError(acct, mapRedditError(errors.New("RATELIMIT: too much")))
	assert.True(t, changed)
	stored, _ = repo.GetAccount("acc-1")
	assert.Equal(t, dal.AccountRateLimited, stored.Status)

	// Auth failure marks shadowbanned
	acct2 := addActiveAccount(t, repo, "acc-2", "cli-1", clock.now().Add(-24*time.Hour))
	changed = ar.HandleAccountError(acct2, mapRedditError(errors.New("USER_REQUIRED: log in")))
	assert.True(t, changed)
	stored, _ = repo.GetAccount("acc-2")
	assert.Equal(t, dal.AccountShadowbanned, stored.Status)
}
