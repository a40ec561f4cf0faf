package dal

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"growth_engine/shared"
)

const schemaVer = 1

//go:embed scripts/*
var scripts embed.FS

type IRepo interface {
	InitUpdateDb()

	AddAccount(acct *Account) error
	GetAccount(id string) (*Account, error)
	GetAccountByUsername(clientId, username string) (*Account, error)
	GetAccountsForWarmup() ([]*Account, error)
	GetActiveAccountsForClient(clientId string) ([]*Account, error)
	UpdateAccountStatus(id, status, reason string) error
	UpdateAccountStage(id string, stage int) error
	UpdateAccountStats(id string, karma, ageDays int, verifiedAt time.Time) error
	RecordAccountAction(id, date string, isPost, isReply bool, when time.Time) error
	CountAccountsByStatus(clientId string) (map[string]int, error)

	AddClient(client *Client) error
	GetClient(id string) (*Client, error)
	GetActiveClients() ([]*Client, error)
	UpdateClientProduct(id, productName, productDescription string, valueProps []string) error

	AddKeyword(kw *Keyword) error
	GetKeywordsForClient(clientId string, activeOnly bool) ([]*Keyword, error)
	UpdateKeywordScanned(id string, when time.Time) error
	IncrementKeywordMentions(id string, count int, when time.Time) error
	IncrementKeywordReplies(id string) error

	AddSubreddit(sub *Subreddit) error
	GetSubreddit(id string) (*Subreddit, error)
	GetSubredditsForClient(clientId string, activeOnly bool) ([]*Subreddit, error)
	IncrementSubredditPosts(id string, when time.Time) error

	AddPost(post *ScheduledPost) error
	GetPost(id string) (*ScheduledPost, error)
	GetPendingPosts(due time.Time) ([]*ScheduledPost, error)
	ClaimPostForPosting(id string) (claimed bool, err error)
	UpdatePostStatus(id, status, errorMessage string) error
	MarkPostPosted(id, accountId, redditPostId, redditUrl string, when time.Time) error
	GetPostsForMetrics(since time.Time) ([]*ScheduledPost, error)
	UpdatePostMetrics(id string, upvotes int, ratio float64, comments int, status string, when time.Time) error

	MentionExists(clientId string, dedupHash int64, redditPostId string) (bool, error)
	AddMentionIfNew(m *Mention) (isNew bool, err error)
	GetMention(id string) (*Mention, error)
	GetUnrepliedMentions(clientId string, limit int) ([]*Mention, error)
	UpdateMentionTriage(id string, relevance float64, sentiment string, shouldReply bool) error
	MarkMentionReplied(id, replyId string, when time.Time) error
	MarkMentionSkipped(id, reason string) error
	CountMentionsSince(clientId string, since time.Time) (found, replied int, err error)

	AddReply(r *Reply) error
	GetRepliesForMetrics(since time.Time) ([]*Reply, error)
	UpdateReplyMetrics(id string, upvotes int, when time.Time) error
	CountRepliesSince(clientId string, since time.Time) (int, error)

	AddActivity(entry *ActivityEntry) error
	CountAccountActions(accountId, activityType string, since time.Time) (int, error)

	UpsertDailyMetrics(dm *DailyMetrics) error
	GetDailyMetrics(clientId, date string) (*DailyMetrics, error)
}

type Repo struct {
	cfg    *shared.Config
	logger shared.ILogger
	db     *sql.DB
	muDb   sync.RWMutex
}

func NewRepo(cfg *shared.Config, logger shared.ILogger) IRepo {

	var err error
	var db *sql.DB

	// https://phiresky.github.io/blog/2020/sqlite-performance-tuning/
	// _synchronous=1 is "normal"
	cstr := "file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_synchronous=1&_busy_timeout=5000"
	db, err = sql.Open("sqlite3", fmt.Sprintf(cstr, cfg.DbFile))
	if err != nil {
		logger.Errorf("Failed to open/create DB file: %s: %v", cfg.DbFile, err)
		panic(err)
	}

	repo := Repo{
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	return &repo
}

func (repo *Repo) InitUpdateDb() {

	dbVer := 0
	sysParamsExists := false
	var err error
	var rows *sql.Rows

	rows, err = repo.db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name='sys_params'")
	if err != nil {
		repo.logger.Errorf("Failed to check if 'sys_params' table exists: %v", err)
		panic(err)
	}
	for rows.Next() {
		sysParamsExists = true
	}
	_ = rows.Close()
	if !sysParamsExists {
		repo.logger.Printf("Database appears to be empty; current schema version is %d", schemaVer)
	} else {
		row := repo.db.QueryRow("SELECT val FROM sys_params WHERE name='schema_ver'")
		if err = row.Scan(&dbVer); err != nil {
			repo.logger.Errorf("Failed to query schema version: %v", err)
			panic(err)
		}
		repo.logger.Printf("Database is at version %d; current schema version is %d", dbVer, schemaVer)
	}
	for i := dbVer; i < schemaVer; i += 1 {
		nextVer := i + 1
		fn := fmt.Sprintf("scripts/create-%02d.sql", nextVer)
		repo.logger.Printf("Running %s", fn)
		var sqlBytes []byte
		if sqlBytes, err = scripts.ReadFile(fn); err != nil {
			repo.logger.Errorf("Failed to read init script %s: %v", fn, err)
			panic(err)
		}
		sqlStr := string(sqlBytes)
		if _, err = repo.db.Exec(sqlStr); err != nil {
			repo.logger.Errorf("Failed to execute init script %s: %v", fn, err)
			panic(err)
		}
		_, err = repo.db.Exec("UPDATE sys_params SET val=? WHERE name='schema_ver'", nextVer)
		if err != nil {
			repo.logger.Errorf("Failed to update schema_ver to %d: %v", i, err)
			panic(err)
		}
	}
}

// Accounts

const accountFields = `id, organization_id, client_id, username, password_encrypted,
	reddit_client_id, reddit_client_secret, user_agent, status, status_reason,
	warmup_stage, karma, account_age_days, last_action_at, last_verified_at,
	daily_action_date, daily_posts, daily_replies, daily_actions, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	var res Account
	err := row.Scan(&res.Id, &res.OrganizationId, &res.ClientId, &res.Username, &res.PasswordEncrypted,
		&res.RedditClientId, &res.RedditClientSecret, &res.UserAgent, &res.Status, &res.StatusReason,
		&res.WarmupStage, &res.Karma, &res.AccountAgeDays, &res.LastActionAt, &res.LastVerifiedAt,
		&res.DailyActionDate, &res.DailyPosts, &res.DailyReplies, &res.DailyActions, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddAccount(acct *Account) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO reddit_accounts
		(id, organization_id, client_id, username, password_encrypted,
		 reddit_client_id, reddit_client_secret, user_agent, status, status_reason,
		 warmup_stage, karma, account_age_days, last_action_at, last_verified_at,
		 daily_action_date, daily_posts, daily_replies, daily_actions, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		acct.Id, acct.OrganizationId, acct.ClientId, acct.Username, acct.PasswordEncrypted,
		acct.RedditClientId, acct.RedditClientSecret, acct.UserAgent, acct.Status, acct.StatusReason,
		acct.WarmupStage, acct.Karma, acct.AccountAgeDays, acct.LastActionAt, acct.LastVerifiedAt,
		acct.DailyActionDate, acct.DailyPosts, acct.DailyReplies, acct.DailyActions, acct.CreatedAt)
	return err
}

func (repo *Repo) GetAccount(id string) (*Account, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT `+accountFields+` FROM reddit_accounts WHERE id=?`, id)
	res, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (repo *Repo) GetAccountByUsername(clientId, username string) (*Account, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT `+accountFields+` FROM reddit_accounts
		WHERE client_id=? AND username=?`, clientId, username)
	res, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (repo *Repo) GetAccountsForWarmup() ([]*Account, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT `+accountFields+` FROM reddit_accounts
		WHERE status=? ORDER BY created_at, id`, AccountWarmingUp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (repo *Repo) GetActiveAccountsForClient(clientId string) ([]*Account, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT `+accountFields+` FROM reddit_accounts
		WHERE client_id=? AND status=? ORDER BY created_at, id`, clientId, AccountActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows *sql.Rows) ([]*Account, error) {
	var res []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (repo *Repo) UpdateAccountStatus(id, status, reason string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE reddit_accounts SET status=?, status_reason=? WHERE id=?`,
		status, reason, id)
	return err
}

func (repo *Repo) UpdateAccountStage(id string, stage int) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE reddit_accounts SET warmup_stage=? WHERE id=?`, stage, id)
	return err
}

func (repo *Repo) UpdateAccountStats(id string, karma, ageDays int, verifiedAt time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE reddit_accounts
		SET karma=?, account_age_days=?, last_verified_at=? WHERE id=?`,
		karma, ageDays, verifiedAt, id)
	return err
}

// RecordAccountAction bumps the daily counters, resetting them first if the
// stored daily_action_date is not the given date.
func (repo *Repo) RecordAccountAction(id, date string, isPost, isReply bool, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE reddit_accounts
		SET daily_posts=0, daily_replies=0, daily_actions=0, daily_action_date=?
		WHERE id=? AND daily_action_date<>?`, date, id, date)
	if err != nil {
		return err
	}
	postInc, replyInc := 0, 0
	if isPost {
		postInc = 1
	}
	if isReply {
		replyInc = 1
	}
	_, err = repo.db.Exec(`UPDATE reddit_accounts
		SET daily_posts=daily_posts+?, daily_replies=daily_replies+?,
			daily_actions=daily_actions+1, last_action_at=?
		WHERE id=?`, postInc, replyInc, when, id)
	return err
}

func (repo *Repo) CountAccountsByStatus(clientId string) (map[string]int, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT status, COUNT(*) FROM reddit_accounts
		WHERE client_id=? GROUP BY status`, clientId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err = rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		res[status] = count
	}
	return res, rows.Err()
}

// Clients

const clientFields = `id, organization_id, name, status, website_url, product_name,
	product_description, value_props, tone, disclosure_text, created_at`

func scanClient(row interface{ Scan(...any) error }) (*Client, error) {
	var res Client
	var valueProps string
	err := row.Scan(&res.Id, &res.OrganizationId, &res.Name, &res.Status, &res.WebsiteUrl,
		&res.ProductName, &res.ProductDescription, &valueProps, &res.Tone,
		&res.DisclosureText, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(valueProps), &res.ValueProps); err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddClient(client *Client) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	valueProps, err := json.Marshal(client.ValueProps)
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(`INSERT INTO clients
		(id, organization_id, name, status, website_url, product_name, product_description,
		 value_props, tone, disclosure_text, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		client.Id, client.OrganizationId, client.Name, client.Status, client.WebsiteUrl,
		client.ProductName, client.ProductDescription, string(valueProps), client.Tone,
		client.DisclosureText, client.CreatedAt)
	return err
}

func (repo *Repo) GetClient(id string) (*Client, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT `+clientFields+` FROM clients WHERE id=?`, id)
	res, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (repo *Repo) GetActiveClients() ([]*Client, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT ` + clientFields + ` FROM clients
		WHERE status='active' ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (repo *Repo) UpdateClientProduct(id, productName, productDescription string, valueProps []string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	vpJson, err := json.Marshal(valueProps)
	if err != nil {
		return err
	}
	_, err = repo.db.Exec(`UPDATE clients SET product_name=?, product_description=?, value_props=?
		WHERE id=?`, productName, productDescription, string(vpJson), id)
	return err
}

// Keywords

func (repo *Repo) AddKeyword(kw *Keyword) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO keywords
		(id, client_id, keyword, is_active, priority, mention_count, reply_count,
		 last_scanned_at, last_mention_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kw.Id, kw.ClientId, kw.Keyword, kw.IsActive, kw.Priority, kw.MentionCount,
		kw.ReplyCount, kw.LastScannedAt, kw.LastMentionAt)
	return err
}

func (repo *Repo) GetKeywordsForClient(clientId string, activeOnly bool) ([]*Keyword, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	query := `SELECT id, client_id, keyword, is_active, priority, mention_count, reply_count,
		last_scanned_at, last_mention_at FROM keywords WHERE client_id=?`
	if activeOnly {
		query += ` AND is_active=1`
	}
	query += ` ORDER BY priority DESC, keyword`
	rows, err := repo.db.Query(query, clientId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Keyword
	for rows.Next() {
		var k Keyword
		err = rows.Scan(&k.Id, &k.ClientId, &k.Keyword, &k.IsActive, &k.Priority,
			&k.MentionCount, &k.ReplyCount, &k.LastScannedAt, &k.LastMentionAt)
		if err != nil {
			return nil, err
		}
		res = append(res, &k)
	}
	return res, rows.Err()
}

func (repo *Repo) UpdateKeywordScanned(id string, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE keywords SET last_scanned_at=? WHERE id=?`, when, id)
	return err
}

func (repo *Repo) IncrementKeywordMentions(id string, count int, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE keywords
		SET mention_count=mention_count+?, last_mention_at=? WHERE id=?`, count, when, id)
	return err
}

func (repo *Repo) IncrementKeywordReplies(id string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE keywords SET reply_count=reply_count+1 WHERE id=?`, id)
	return err
}

// Subreddits

const subredditFields = `id, client_id, name, is_active, rules_summary, min_karma,
	min_account_age_days, posts_count, last_posted_at, relevance_score`

func scanSubreddit(row interface{ Scan(...any) error }) (*Subreddit, error) {
	var res Subreddit
	err := row.Scan(&res.Id, &res.ClientId, &res.Name, &res.IsActive, &res.RulesSummary,
		&res.MinKarma, &res.MinAccountAgeDays, &res.PostsCount, &res.LastPostedAt,
		&res.RelevanceScore)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddSubreddit(sub *Subreddit) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO subreddits
		(id, client_id, name, is_active, rules_summary, min_karma, min_account_age_days,
		 posts_count, last_posted_at, relevance_score)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.Id, sub.ClientId, sub.Name, sub.IsActive, sub.RulesSummary, sub.MinKarma,
		sub.MinAccountAgeDays, sub.PostsCount, sub.LastPostedAt, sub.RelevanceScore)
	return err
}

func (repo *Repo) GetSubreddit(id string) (*Subreddit, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT `+subredditFields+` FROM subreddits WHERE id=?`, id)
	res, err := scanSubreddit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (repo *Repo) GetSubredditsForClient(clientId string, activeOnly bool) ([]*Subreddit, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	query := `SELECT ` + subredditFields + ` FROM subreddits WHERE client_id=?`
	if activeOnly {
		query += ` AND is_active=1`
	}
	query += ` ORDER BY relevance_score DESC, name`
	rows, err := repo.db.Query(query, clientId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Subreddit
	for rows.Next() {
		s, err := scanSubreddit(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (repo *Repo) IncrementSubredditPosts(id string, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE subreddits
		SET posts_count=posts_count+1, last_posted_at=? WHERE id=?`, when, id)
	return err
}

// Posts

const postFields = `id, client_id, subreddit_id, account_id, title, content, content_type,
	link_url, status, generated_by, scheduled_at, posted_at, reddit_post_id, reddit_url,
	error_message, upvotes, upvote_ratio, comments_count, metrics_updated_at, created_at`

func scanPost(row interface{ Scan(...any) error }) (*ScheduledPost, error) {
	var res ScheduledPost
	err := row.Scan(&res.Id, &res.ClientId, &res.SubredditId, &res.AccountId, &res.Title,
		&res.Content, &res.ContentType, &res.LinkUrl, &res.Status, &res.GeneratedBy,
		&res.ScheduledAt, &res.PostedAt, &res.RedditPostId, &res.RedditUrl, &res.ErrorMessage,
		&res.Upvotes, &res.UpvoteRatio, &res.CommentsCount, &res.MetricsUpdatedAt, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddPost(post *ScheduledPost) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO posts
		(id, client_id, subreddit_id, account_id, title, content, content_type, link_url,
		 status, generated_by, scheduled_at, posted_at, reddit_post_id, reddit_url,
		 error_message, upvotes, upvote_ratio, comments_count, metrics_updated_at, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.Id, post.ClientId, post.SubredditId, post.AccountId, post.Title, post.Content,
		post.ContentType, post.LinkUrl, post.Status, post.GeneratedBy, post.ScheduledAt,
		post.PostedAt, post.RedditPostId, post.RedditUrl, post.ErrorMessage, post.Upvotes,
		post.UpvoteRatio, post.CommentsCount, post.MetricsUpdatedAt, post.CreatedAt)
	return err
}

func (repo *Repo) GetPost(id string) (*ScheduledPost, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT `+postFields+` FROM posts WHERE id=?`, id)
	res, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (repo *Repo) GetPendingPosts(due time.Time) ([]*ScheduledPost, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT `+postFields+` FROM posts
		WHERE status=? AND scheduled_at<=? ORDER BY scheduled_at, id`, PostScheduled, due)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows *sql.Rows) ([]*ScheduledPost, error) {
	var res []*ScheduledPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

// ClaimPostForPosting flips scheduled -> posting; the status guard in the WHERE
// clause means concurrent workers claim a post at most once.
func (repo *Repo) ClaimPostForPosting(id string) (claimed bool, err error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	res, err := repo.db.Exec(`UPDATE posts SET status=? WHERE id=? AND status=?`,
		PostPosting, id, PostScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (repo *Repo) UpdatePostStatus(id, status, errorMessage string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE posts SET status=?, error_message=? WHERE id=?`,
		status, errorMessage, id)
	return err
}

func (repo *Repo) MarkPostPosted(id, accountId, redditPostId, redditUrl string, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE posts
		SET status=?, account_id=?, reddit_post_id=?, reddit_url=?, posted_at=?, error_message=''
		WHERE id=?`,
		PostPosted, accountId, redditPostId, redditUrl, when, id)
	return err
}

func (repo *Repo) GetPostsForMetrics(since time.Time) ([]*ScheduledPost, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT `+postFields+` FROM posts
		WHERE status IN (?, ?) AND posted_at>=? AND reddit_post_id<>''
		ORDER BY posted_at, id`, PostPosted, PostRemoved, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (repo *Repo) UpdatePostMetrics(id string, upvotes int, ratio float64, comments int,
	status string, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE posts
		SET upvotes=?, upvote_ratio=?, comments_count=?, status=?, metrics_updated_at=?
		WHERE id=?`,
		upvotes, ratio, comments, status, when, id)
	return err
}

// Mentions

const mentionFields = `id, organization_id, client_id, keyword_id, reddit_post_id, dedup_hash,
	reddit_url, subreddit, post_title, post_content, post_author, post_type, post_score,
	post_comments, detected_at, relevance_score, sentiment, should_reply, replied,
	skip_reason, reply_id, replied_at, matched_keywords`

func scanMention(row interface{ Scan(...any) error }) (*Mention, error) {
	var res Mention
	var matched string
	err := row.Scan(&res.Id, &res.OrganizationId, &res.ClientId, &res.KeywordId, &res.RedditPostId,
		&res.DedupHash, &res.RedditUrl, &res.Subreddit, &res.PostTitle, &res.PostContent,
		&res.PostAuthor, &res.PostType, &res.PostScore, &res.PostComments, &res.DetectedAt,
		&res.RelevanceScore, &res.Sentiment, &res.ShouldReply, &res.Replied, &res.SkipReason,
		&res.ReplyId, &res.RepliedAt, &matched)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(matched), &res.MatchedKeywords); err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) MentionExists(clientId string, dedupHash int64, redditPostId string) (bool, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT COUNT(*) FROM mentions
		WHERE client_id=? AND dedup_hash=? AND reddit_post_id=?`,
		clientId, dedupHash, redditPostId)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count != 0, nil
}

func (repo *Repo) AddMentionIfNew(m *Mention) (isNew bool, err error) {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	matched, err := json.Marshal(m.MatchedKeywords)
	if err != nil {
		return false, err
	}
	isNew = true
	_, err = repo.db.Exec(`INSERT INTO mentions
		(id, organization_id, client_id, keyword_id, reddit_post_id, dedup_hash, reddit_url,
		 subreddit, post_title, post_content, post_author, post_type, post_score, post_comments,
		 detected_at, relevance_score, sentiment, should_reply, replied, skip_reason, reply_id,
		 replied_at, matched_keywords)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Id, m.OrganizationId, m.ClientId, m.KeywordId, m.RedditPostId, m.DedupHash, m.RedditUrl,
		m.Subreddit, m.PostTitle, m.PostContent, m.PostAuthor, m.PostType, m.PostScore,
		m.PostComments, m.DetectedAt, m.RelevanceScore, m.Sentiment, m.ShouldReply, m.Replied,
		m.SkipReason, m.ReplyId, m.RepliedAt, string(matched))
	if err == nil {
		return
	}
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		// Duplicate key: mention for this reddit item already recorded
		if sqliteErr.Code == 19 && sqliteErr.ExtendedCode == 2067 {
			return false, nil
		}
	}
	return false, err
}

func (repo *Repo) GetMention(id string) (*Mention, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT `+mentionFields+` FROM mentions WHERE id=?`, id)
	res, err := scanMention(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (repo *Repo) GetUnrepliedMentions(clientId string, limit int) ([]*Mention, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT `+mentionFields+` FROM mentions
		WHERE client_id=? AND should_reply=1 AND replied=0 AND skip_reason=''
		ORDER BY detected_at, id LIMIT ?`, clientId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Mention
	for rows.Next() {
		m, err := scanMention(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (repo *Repo) UpdateMentionTriage(id string, relevance float64, sentiment string, shouldReply bool) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE mentions
		SET relevance_score=?, sentiment=?, should_reply=? WHERE id=?`,
		relevance, sentiment, shouldReply, id)
	return err
}

func (repo *Repo) MarkMentionReplied(id, replyId string, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE mentions
		SET replied=1, reply_id=?, replied_at=? WHERE id=?`, replyId, when, id)
	return err
}

func (repo *Repo) MarkMentionSkipped(id, reason string) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE mentions SET skip_reason=? WHERE id=?`, reason, id)
	return err
}

func (repo *Repo) CountMentionsSince(clientId string, since time.Time) (found, replied int, err error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(replied), 0) FROM mentions
		WHERE client_id=? AND detected_at>=?`, clientId, since)
	if err = row.Scan(&found, &replied); err != nil {
		return 0, 0, err
	}
	return found, replied, nil
}

// Replies

const replyFields = `id, client_id, account_id, mention_id, post_id, reddit_comment_id,
	reddit_url, parent_type, parent_reddit_id, content, status, posted_at, upvotes,
	metrics_updated_at`

func scanReply(row interface{ Scan(...any) error }) (*Reply, error) {
	var res Reply
	err := row.Scan(&res.Id, &res.ClientId, &res.AccountId, &res.MentionId, &res.PostId,
		&res.RedditCommentId, &res.RedditUrl, &res.ParentType, &res.ParentRedditId,
		&res.Content, &res.Status, &res.PostedAt, &res.Upvotes, &res.MetricsUpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (repo *Repo) AddReply(r *Reply) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO replies
		(id, client_id, account_id, mention_id, post_id, reddit_comment_id, reddit_url,
		 parent_type, parent_reddit_id, content, status, posted_at, upvotes, metrics_updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Id, r.ClientId, r.AccountId, r.MentionId, r.PostId, r.RedditCommentId, r.RedditUrl,
		r.ParentType, r.ParentRedditId, r.Content, r.Status, r.PostedAt, r.Upvotes,
		r.MetricsUpdatedAt)
	return err
}

func (repo *Repo) GetRepliesForMetrics(since time.Time) ([]*Reply, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	rows, err := repo.db.Query(`SELECT `+replyFields+` FROM replies
		WHERE posted_at>=? AND reddit_comment_id<>'' ORDER BY posted_at, id`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Reply
	for rows.Next() {
		r, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (repo *Repo) UpdateReplyMetrics(id string, upvotes int, when time.Time) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`UPDATE replies SET upvotes=?, metrics_updated_at=? WHERE id=?`,
		upvotes, when, id)
	return err
}

func (repo *Repo) CountRepliesSince(clientId string, since time.Time) (int, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT COUNT(*) FROM replies
		WHERE client_id=? AND posted_at>=?`, clientId, since)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Activity log

func (repo *Repo) AddActivity(entry *ActivityEntry) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO activity_log
		(activity_type, organization_id, client_id, account_id, entity_type, entity_id,
		 details, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ActivityType, entry.OrganizationId, entry.ClientId, entry.AccountId,
		entry.EntityType, entry.EntityId, entry.Details, entry.CreatedAt)
	return err
}

func (repo *Repo) CountAccountActions(accountId, activityType string, since time.Time) (int, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT COUNT(*) FROM activity_log
		WHERE account_id=? AND activity_type=? AND created_at>=?`,
		accountId, activityType, since)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Daily metrics

func (repo *Repo) UpsertDailyMetrics(dm *DailyMetrics) error {

	repo.muDb.Lock()
	defer repo.muDb.Unlock()

	_, err := repo.db.Exec(`INSERT INTO daily_metrics
		(client_id, date, posts_count, replies_count, mentions_found, mentions_replied,
		 total_upvotes, total_comments, accounts_active)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id, date) DO UPDATE SET
		 posts_count=excluded.posts_count, replies_count=excluded.replies_count,
		 mentions_found=excluded.mentions_found, mentions_replied=excluded.mentions_replied,
		 total_upvotes=excluded.total_upvotes, total_comments=excluded.total_comments,
		 accounts_active=excluded.accounts_active`,
		dm.ClientId, dm.Date, dm.PostsCount, dm.RepliesCount, dm.MentionsFound,
		dm.MentionsReplied, dm.TotalUpvotes, dm.TotalComments, dm.AccountsActive)
	return err
}

func (repo *Repo) GetDailyMetrics(clientId, date string) (*DailyMetrics, error) {

	repo.muDb.RLock()
	defer repo.muDb.RUnlock()

	row := repo.db.QueryRow(`SELECT client_id, date, posts_count, replies_count, mentions_found,
		mentions_replied, total_upvotes, total_comments, accounts_active
		FROM daily_metrics WHERE client_id=? AND date=?`, clientId, date)
	var res DailyMetrics
	err := row.Scan(&res.ClientId, &res.Date, &res.PostsCount, &res.RepliesCount,
		&res.MentionsFound, &res.MentionsReplied, &res.TotalUpvotes, &res.TotalComments,
		&res.AccountsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}
