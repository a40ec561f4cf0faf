package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/fx"

	"growth_engine/dal"
	"growth_engine/logic"
	"growth_engine/server"
	"growth_engine/shared"
	"growth_engine/texts"
)

type initErrorHandler struct {
}

func (*initErrorHandler) HandleError(err error) {
	fmt.Fprintf(os.Stderr, "Failed to initialize dependency injection\n%v", err)
}

var logger shared.ILogger

func main() {

	cfg := shared.LoadConfig()
	provideConfig := func() *shared.Config {
		return cfg
	}

	logger = shared.InitLogger(cfg)
	provideLogger := func() shared.ILogger {
		return logger
	}

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			provideConfig,
			provideLogger,
			server.NewHTTPServer,
			fx.Annotate(server.NewMux, fx.ParamTags(`group:"handler_group"`)),
			shared.NewUserAgent,
			shared.NewTimeSeededRand,
			shared.NewSleeper,
			logic.NewMetrics,
			logic.NewVault,
			logic.NewRateLimiter,
			logic.NewSessionFactory,
			logic.NewAccountRegistry,
			logic.NewContentGenerator,
			logic.NewWarmupEngine,
			logic.NewPostScheduler,
			logic.NewMentionMonitor,
			logic.NewReplyEngine,
			logic.NewMetricsSyncer,
			logic.NewWebsiteScraper,
			logic.NewJobRunner,
			texts.NewTexts,
			dal.NewRepo,
			asHandlerGroupDef(server.NewApiHandlerGroup),
			asHandlerGroupDef(server.NewMetricsHandlerGroup),
			asHandlerGroupDef(server.NewHealthHandlerGroup),
		),
		fx.Invoke(
			registerHooks,
			func(repo dal.IRepo) { repo.InitUpdateDb() },
			func(cfg *shared.Config) { logic.NewProfiler(cfg) },
			func(*http.Server) {},
		),
		fx.ErrorHook(&initErrorHandler{}),
	)
	app.Run()
}

func asHandlerGroupDef(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(server.IHandlerGroup)),
		fx.ResultTags(`group:"handler_group"`),
	)
}

func registerHooks(lc fx.Lifecycle, metrics logic.IMetrics, runner logic.IJobRunner) {
	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				logger.Printf("Application starting up")
				metrics.ServiceStarted()
				runner.Start()
				return nil
			},
			OnStop: func(context.Context) error {
				logger.Printf("Application shutting down")
				runner.Stop()
				return nil
			},
		},
	)
}
