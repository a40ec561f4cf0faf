package logic

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_scheduler.go -package mocks growth_engine/logic IJobRunner

// Batch job names; these double as the API trigger path segments.
const (
	JobPendingPosts = "posts"
	JobMentionScan  = "mentions"
	JobReplies      = "replies"
	JobWarmup       = "warmup"
	JobMetricsSync  = "metrics-sync"
)

// IJobRunner schedules the periodic batch jobs and lets the API trigger them
// by name. A job never runs twice concurrently; a trigger while running is
// rejected.
type IJobRunner interface {
	Start()
	Stop()
	TriggerJob(name string) error
	JobNames() []string
}

type jobRunner struct {
	cfg    *shared.Config
	logger shared.ILogger
	cron   *cron.Cron
	jobs   map[string]func(ctx context.Context)

	mu      sync.Mutex
	running map[string]bool
}

func NewJobRunner(
	cfg *shared.Config,
	logger shared.ILogger,
	warmup IWarmupEngine,
	poster IPostScheduler,
	monitor IMentionMonitor,
	replier IReplyEngine,
	syncer IMetricsSyncer,
) IJobRunner {
	jr := &jobRunner{
		cfg:     cfg,
		logger:  logger,
		cron:    cron.New(),
		running: map[string]bool{},
	}
	jr.jobs = map[string]func(ctx context.Context){
		JobPendingPosts: func(ctx context.Context) { poster.ProcessPendingPosts(ctx, 0) },
		JobMentionScan:  func(ctx context.Context) { monitor.ScanAllClients(ctx) },
		JobReplies:      func(ctx context.Context) { replier.ProcessAllClients(ctx) },
		JobWarmup:       func(ctx context.Context) { warmup.ProcessWarmupAccounts(ctx) },
		JobMetricsSync:  func(ctx context.Context) { syncer.SyncAll(ctx, 0) },
	}
	return jr
}

// Start registers the configured schedules and starts the cron loop. An empty
// expression leaves the job trigger-only.
func (jr *jobRunner) Start() {

	schedules := map[string]string{
		JobPendingPosts: jr.cfg.Jobs.PendingPosts,
		JobMentionScan:  jr.cfg.Jobs.MentionScan,
		JobReplies:      jr.cfg.Jobs.Replies,
		JobWarmup:       jr.cfg.Jobs.Warmup,
		JobMetricsSync:  jr.cfg.Jobs.MetricsSync,
	}
	for name, expr := range schedules {
		if expr == "" {
			jr.logger.Infof("Job %s has no schedule; API trigger only", name)
			continue
		}
		name := name
		_, err := jr.cron.AddFunc(expr, func() { jr.runJob(name) })
		if err != nil {
			jr.logger.Errorf("Invalid schedule %q for job %s: %v", expr, name, err)
			continue
		}
		jr.logger.Infof("Scheduled job %s: %s", name, expr)
	}
	jr.cron.Start()
}

// Stop halts the cron loop and waits for a running job to finish.
func (jr *jobRunner) Stop() {
	ctx := jr.cron.Stop()
	<-ctx.Done()
}

// TriggerJob starts the named job in the background.
func (jr *jobRunner) TriggerJob(name string) error {
	if _, ok := jr.jobs[name]; !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	if !jr.tryAcquire(name) {
		return fmt.Errorf("job %q is already running", name)
	}
	go func() {
		defer jr.release(name)
		jr.execute(name)
	}()
	return nil
}

func (jr *jobRunner) JobNames() []string {
	return []string{JobPendingPosts, JobMentionScan, JobReplies, JobWarmup, JobMetricsSync}
}

func (jr *jobRunner) runJob(name string) {
	if !jr.tryAcquire(name) {
		jr.logger.Warnf("Skipping scheduled run of job %s: previous run still going", name)
		return
	}
	defer jr.release(name)
	jr.execute(name)
}

func (jr *jobRunner) execute(name string) {
	jr.logger.Infof("Job %s starting", name)
	defer func() {
		if r := recover(); r != nil {
			jr.logger.Errorf("Job %s panicked: %v", name, r)
		}
	}()
	jr.jobs[name](context.Background())
	jr.logger.Infof("Job %s finished", name)
}

func (jr *jobRunner) tryAcquire(name string) bool {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	if jr.running[name] {
		return false
	}
	jr.running[name] = true
	return true
}

func (jr *jobRunner) release(name string) {
	jr.mu.Lock()
	defer jr.mu.Unlock()
	jr.running[name] = false
}
