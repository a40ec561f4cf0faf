package dto

import "time"

type OnboardAccountReq struct {
	OrganizationId     string `json:"organization_id"`
	ClientId           string `json:"client_id"`
	Username           string `json:"username"`
	Password           string `json:"password"`
	RedditClientId     string `json:"reddit_client_id"`
	RedditClientSecret string `json:"reddit_client_secret"`
}

type Account struct {
	Id             string    `json:"id"`
	ClientId       string    `json:"client_id"`
	Username       string    `json:"username"`
	Status         string    `json:"status"`
	WarmupStage    int       `json:"warmup_stage"`
	Karma          int       `json:"karma"`
	AccountAgeDays int       `json:"account_age_days"`
	CreatedAt      time.Time `json:"created_at"`
}

type NextStage struct {
	Stage          int `json:"stage"`
	DaysRequired   int `json:"days_required"`
	DaysRemaining  int `json:"days_remaining"`
	KarmaRequired  int `json:"karma_required"`
	KarmaRemaining int `json:"karma_remaining"`
}

type WarmupStatus struct {
	AccountId      string     `json:"account_id"`
	Username       string     `json:"username"`
	Status         string     `json:"status"`
	CurrentStage   int        `json:"current_stage"`
	StageName      string     `json:"stage_name"`
	Karma          int        `json:"karma"`
	AccountAgeDays int        `json:"account_age_days"`
	IsReady        bool       `json:"is_ready"`
	NextStage      *NextStage `json:"next_stage,omitempty"`
}

type CreatePostReq struct {
	ClientId    string    `json:"client_id"`
	SubredditId string    `json:"subreddit_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	LinkUrl     string    `json:"link_url"`
	GeneratedBy string    `json:"generated_by"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type Post struct {
	Id          string    `json:"id"`
	ClientId    string    `json:"client_id"`
	SubredditId string    `json:"subreddit_id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type GeneratePostReq struct {
	ClientId       string    `json:"client_id"`
	SubredditId    string    `json:"subreddit_id"`
	Topic          string    `json:"topic"`
	PostType       string    `json:"post_type"`
	IncludeProduct bool      `json:"include_product_mention"`
	ScheduledAt    time.Time `json:"scheduled_at"`
}

type OnboardClientReq struct {
	WebsiteUrl string `json:"website_url"`
}

type ProductInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type OnboardResult struct {
	Product             ProductInfo `json:"product"`
	KeywordsGenerated   int         `json:"keywords_generated"`
	SubredditsSuggested int         `json:"subreddits_suggested"`
}

type JobTrigger struct {
	Job    string `json:"job"`
	Status string `json:"status"`
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
