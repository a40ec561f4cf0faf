package logic

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"growth_engine/shared"
)

type IMetrics interface {
	ServiceStarted()
	StartApiRequestIn(label string) IRequestObserver
	StartLlmRequestOut(label string) IRequestObserver
	AccountAction(actionType string)
	AccountDemoted(status string)
	WarmupActionPerformed(action string)
	WarmupStageAdvanced()
	PostPublished()
	PostFailed()
	MentionFound()
	MentionReplied()
	MentionSkipped(reason string)
	ActiveAccountCount(count int)
	PendingPostCount(count int)
}

type IRequestObserver interface {
	Finish()
}

type metrics struct {
	cfg               *shared.Config
	apiRequestsIn     *prometheus.HistogramVec
	llmRequestsOut    *prometheus.HistogramVec
	accountActions    *prometheus.CounterVec
	accountsDemoted   *prometheus.CounterVec
	warmupActions     *prometheus.CounterVec
	warmupAdvances    prometheus.Counter
	postsPublished    prometheus.Counter
	postsFailed       prometheus.Counter
	mentionsFound     prometheus.Counter
	mentionsReplied   prometheus.Counter
	mentionsSkipped   *prometheus.CounterVec
	serviceStarted    prometheus.Counter
	activeAccounts    prometheus.Gauge
	pendingPostsGauge prometheus.Gauge
}

func NewMetrics(cfg *shared.Config) IMetrics {

	res := metrics{}
	res.cfg = cfg

	res.apiRequestsIn = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "api_requests_in_duration",
		Help: "Duration in seconds of API requests served.",
	}, []string{"label"})
	prometheus.Register(res.apiRequestsIn)

	res.llmRequestsOut = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "llm_requests_out_duration",
		Help: "Duration in seconds of language model requests made.",
	}, []string{"label"})
	prometheus.Register(res.llmRequestsOut)

	res.accountActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "account_actions",
		Help: "Number of reddit actions performed, by type",
	}, []string{"action"})
	prometheus.Register(res.accountActions)

	res.accountsDemoted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "accounts_demoted",
		Help: "Number of account demotions, by resulting status",
	}, []string{"status"})
	prometheus.Register(res.accountsDemoted)

	res.warmupActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warmup_actions",
		Help: "Number of warmup actions performed, by type",
	}, []string{"action"})
	prometheus.Register(res.warmupActions)

	res.warmupAdvances = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warmup_stage_advances",
		Help: "Number of warmup stage advancements",
	})
	prometheus.Register(res.warmupAdvances)

	res.postsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_published",
		Help: "Number of scheduled posts published",
	})
	prometheus.Register(res.postsPublished)

	res.postsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_failed",
		Help: "Number of scheduled posts that failed permanently",
	})
	prometheus.Register(res.postsFailed)

	res.mentionsFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mentions_found",
		Help: "Number of new mentions detected",
	})
	prometheus.Register(res.mentionsFound)

	res.mentionsReplied = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mentions_replied",
		Help: "Number of mentions replied to",
	})
	prometheus.Register(res.mentionsReplied)

	res.mentionsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mentions_skipped",
		Help: "Number of mentions skipped, by reason",
	}, []string{"reason"})
	prometheus.Register(res.mentionsSkipped)

	res.serviceStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "service_started",
		Help: "Service has started up",
	})
	prometheus.Register(res.serviceStarted)

	res.activeAccounts = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_account_count",
		Help: "Number of accounts in active status",
	})
	prometheus.Register(res.activeAccounts)

	res.pendingPostsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pending_post_count",
		Help: "Number of scheduled posts waiting to be published",
	})
	prometheus.Register(res.pendingPostsGauge)

	return &res
}

type requestObserver struct {
	label string
	start time.Time
	hgvec *prometheus.HistogramVec
}

func (ro *requestObserver) Finish() {
	now := time.Now()
	elapsed := float64(now.UnixMilli()-ro.start.UnixMilli()) / 1000.0
	ro.hgvec.WithLabelValues(ro.label).Observe(elapsed)
}

func (m *metrics) StartApiRequestIn(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.apiRequestsIn}
}

func (m *metrics) StartLlmRequestOut(label string) IRequestObserver {
	return &requestObserver{label, time.Now(), m.llmRequestsOut}
}

func (m *metrics) AccountAction(actionType string) {
	m.accountActions.WithLabelValues(actionType).Add(1)
}

func (m *metrics) AccountDemoted(status string) {
	m.accountsDemoted.WithLabelValues(status).Add(1)
}

func (m *metrics) WarmupActionPerformed(action string) {
	m.warmupActions.WithLabelValues(action).Add(1)
}

func (m *metrics) WarmupStageAdvanced() {
	m.warmupAdvances.Add(1)
}

func (m *metrics) PostPublished() {
	m.postsPublished.Add(1)
}

func (m *metrics) PostFailed() {
	m.postsFailed.Add(1)
}

func (m *metrics) MentionFound() {
	m.mentionsFound.Add(1)
}

func (m *metrics) MentionReplied() {
	m.mentionsReplied.Add(1)
}

func (m *metrics) MentionSkipped(reason string) {
	m.mentionsSkipped.WithLabelValues(reason).Add(1)
}

func (m *metrics) ServiceStarted() {
	m.serviceStarted.Add(1)
}

func (m *metrics) ActiveAccountCount(count int) {
	m.activeAccounts.Set(float64(count))
}

func (m *metrics) PendingPostCount(count int) {
	m.pendingPostsGauge.Set(float64(count))
}
