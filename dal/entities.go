package dal

import (
	"time"
)

// Account statuses. An account is never hard-deleted; it is demoted to one of
// the inactive-ish statuses instead.
const (
	AccountWarmingUp    = "warming_up"
	AccountActive       = "active"
	AccountRateLimited  = "rate_limited"
	AccountShadowbanned = "shadowbanned"
	AccountSuspended    = "suspended"
	AccountInactive     = "inactive"
)

// Scheduled post statuses. Legal transitions: draft -> scheduled -> posting ->
// posted|failed; posted -> removed is observed during metrics sync.
const (
	PostDraft     = "draft"
	PostScheduled = "scheduled"
	PostPosting   = "posting"
	PostPosted    = "posted"
	PostFailed    = "failed"
	PostRemoved   = "removed"
)

const TerminalWarmupStage = 5

type Account struct {
	Id                 string
	OrganizationId     string
	ClientId           string
	Username           string
	PasswordEncrypted  string // Fernet token; decrypted through the vault on session build
	RedditClientId     string
	RedditClientSecret string
	UserAgent          string
	Status             string
	StatusReason       string
	WarmupStage        int
	Karma              int
	AccountAgeDays     int
	LastActionAt       *time.Time
	LastVerifiedAt     *time.Time
	DailyActionDate    string // yyyy-mm-dd the daily counters belong to
	DailyPosts         int
	DailyReplies       int
	DailyActions       int
	CreatedAt          time.Time
}

type Client struct {
	Id                 string
	OrganizationId     string
	Name               string
	Status             string
	WebsiteUrl         string
	ProductName        string
	ProductDescription string
	ValueProps         []string
	Tone               string
	DisclosureText     string
	CreatedAt          time.Time
}

type Keyword struct {
	Id            string
	ClientId      string
	Keyword       string
	IsActive      bool
	Priority      int
	MentionCount  int
	ReplyCount    int
	LastScannedAt *time.Time
	LastMentionAt *time.Time
}

type Subreddit struct {
	Id                string
	ClientId          string
	Name              string
	IsActive          bool
	RulesSummary      string
	MinKarma          int
	MinAccountAgeDays int
	PostsCount        int
	LastPostedAt      *time.Time
	RelevanceScore    float64
}

type ScheduledPost struct {
	Id               string
	ClientId         string
	SubredditId      string
	AccountId        string // set once an account has been picked for publishing
	Title            string
	Content          string
	ContentType      string // "text" or "link"
	LinkUrl          string
	Status           string
	GeneratedBy      string
	ScheduledAt      time.Time
	PostedAt         *time.Time
	RedditPostId     string
	RedditUrl        string
	ErrorMessage     string
	Upvotes          int
	UpvoteRatio      float64
	CommentsCount    int
	MetricsUpdatedAt *time.Time
	CreatedAt        time.Time
}

type Mention struct {
	Id              string
	OrganizationId  string
	ClientId        string
	KeywordId       string
	RedditPostId    string // dedup key together with ClientId
	DedupHash       int64  // murmur3 of RedditPostId, indexed for fast existence checks
	RedditUrl       string
	Subreddit       string
	PostTitle       string
	PostContent     string
	PostAuthor      string
	PostType        string // "submission" or "comment"
	PostScore       int
	PostComments    int
	DetectedAt      time.Time
	RelevanceScore  float64
	Sentiment       string
	ShouldReply     bool
	Replied         bool
	SkipReason      string
	ReplyId         string
	RepliedAt       *time.Time
	MatchedKeywords []string
}

type Reply struct {
	Id               string
	ClientId         string
	AccountId        string
	MentionId        string
	PostId           string
	RedditCommentId  string
	RedditUrl        string
	ParentType       string
	ParentRedditId   string
	Content          string
	Status           string
	PostedAt         *time.Time
	Upvotes          int
	MetricsUpdatedAt *time.Time
}

// ActivityEntry is an append-only audit record; Details is free-form JSON.
type ActivityEntry struct {
	Id             int64
	ActivityType   string
	OrganizationId string
	ClientId       string
	AccountId      string
	EntityType     string
	EntityId       string
	Details        string
	CreatedAt      time.Time
}

// DailyMetrics is the per-client, per-day rollup; upserts keyed (client, date)
// make recomputation idempotent.
type DailyMetrics struct {
	ClientId        string
	Date            string // yyyy-mm-dd
	PostsCount      int
	RepliesCount    int
	MentionsFound   int
	MentionsReplied int
	TotalUpvotes    int
	TotalComments   int
	AccountsActive  int
}
