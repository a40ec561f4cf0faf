package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"growth_engine/dal"
	"growth_engine/dto"
	"growth_engine/logic"
	"growth_engine/shared"
)

type apiHandlerGroup struct {
	cfg      *shared.Config
	logger   shared.ILogger
	repo     dal.IRepo
	runner   logic.IJobRunner
	warmup   logic.IWarmupEngine
	registry logic.IAccountRegistry
	poster   logic.IPostScheduler
	scraper  logic.IWebsiteScraper
	content  logic.IContentGenerator
	metrics  logic.IMetrics
}

func NewApiHandlerGroup(
	cfg *shared.Config,
	logger shared.ILogger,
	repo dal.IRepo,
	runner logic.IJobRunner,
	warmup logic.IWarmupEngine,
	registry logic.IAccountRegistry,
	poster logic.IPostScheduler,
	scraper logic.IWebsiteScraper,
	content logic.IContentGenerator,
	metrics logic.IMetrics,
) IHandlerGroup {
	res := apiHandlerGroup{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		runner:   runner,
		warmup:   warmup,
		registry: registry,
		poster:   poster,
		scraper:  scraper,
		content:  content,
		metrics:  metrics,
	}
	return &res
}

func (hg *apiHandlerGroup) Prefix() string {
	return "/api"
}

func (hg *apiHandlerGroup) GroupDefs() []handlerDef {
	return []handlerDef{
		{"POST", "/jobs/{job}", func(w http.ResponseWriter, r *http.Request) { hg.postJob(w, r) }},
		{"POST", "/accounts", func(w http.ResponseWriter, r *http.Request) { hg.postAccounts(w, r) }},
		{"GET", "/accounts/{id}/warmup-status", func(w http.ResponseWriter, r *http.Request) { hg.getWarmupStatus(w, r) }},
		{"POST", "/posts", func(w http.ResponseWriter, r *http.Request) { hg.postPosts(w, r) }},
		{"POST", "/posts/generate", func(w http.ResponseWriter, r *http.Request) { hg.postGeneratePost(w, r) }},
		{"POST", "/clients/{id}/onboard", func(w http.ResponseWriter, r *http.Request) { hg.postClientOnboard(w, r) }},
	}
}

func (hg *apiHandlerGroup) AuthMW() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return hg.authMW(next)
	}
}

func (hg *apiHandlerGroup) authMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var apiKey = r.Header.Get(apiKeyHeader)
		found := false
		for _, key := range hg.cfg.Secrets.ApiKeys {
			if apiKey == key {
				found = true
			}
		}
		if !found {
			keyPart := apiKey
			if len(apiKey) > 4 {
				keyPart = apiKey[:4] + "..."
			}
			hg.logger.Warnf("API request with missing or invalid key '%s': %s", keyPart, r.URL.Path)
			writeErrorResponse(w, badApiKeyStr, http.StatusUnauthorized)
			return
		}
		label := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				label = tmpl
			}
		}
		obs := hg.metrics.StartApiRequestIn(r.Method + " " + label)
		next.ServeHTTP(w, r)
		obs.Finish()
	})
}

func (hg *apiHandlerGroup) postJob(w http.ResponseWriter, r *http.Request) {
	job := mux.Vars(r)["job"]
	hg.logger.Infof("POST /api/jobs/%s: Request received", job)
	known := false
	for _, name := range hg.runner.JobNames() {
		if name == job {
			known = true
		}
	}
	if !known {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}
	if err := hg.runner.TriggerJob(job); err != nil {
		writeErrorResponse(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJsonResponse(hg.logger, w, dto.JobTrigger{Job: job, Status: "started"})
}

func (hg *apiHandlerGroup) postAccounts(w http.ResponseWriter, r *http.Request) {
	hg.logger.Info("POST /api/accounts: Request received")
	body := readBody(hg.logger, w, r)
	if body == nil {
		return
	}
	var req dto.OnboardAccountReq
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}
	if req.ClientId == "" || req.Username == "" || req.Password == "" ||
		req.RedditClientId == "" || req.RedditClientSecret == "" {
		writeErrorResponse(w, "client_id, username, password and reddit credentials are required",
			http.StatusBadRequest)
		return
	}
	acct, err := hg.registry.OnboardAccount(req.OrganizationId, req.ClientId, req.Username,
		req.Password, req.RedditClientId, req.RedditClientSecret)
	if err != nil {
		hg.logger.Errorf("Failed to onboard account %s: %v", req.Username, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	writeJsonResponse(hg.logger, w, accountToDto(acct))
}

func (hg *apiHandlerGroup) getWarmupStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status, err := hg.warmup.WarmupStatus(r.Context(), id)
	if err != nil {
		hg.logger.Errorf("Failed to get warmup status of %s: %v", id, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	if status == nil {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}
	writeJsonResponse(hg.logger, w, warmupStatusToDto(status))
}

func (hg *apiHandlerGroup) postPosts(w http.ResponseWriter, r *http.Request) {
	hg.logger.Info("POST /api/posts: Request received")
	body := readBody(hg.logger, w, r)
	if body == nil {
		return
	}
	var req dto.CreatePostReq
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}
	post, err := hg.poster.CreateScheduledPost(req.ClientId, req.SubredditId, req.Title,
		req.Content, req.ContentType, req.LinkUrl, req.GeneratedBy, req.ScheduledAt)
	if err != nil {
		writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJsonResponse(hg.logger, w, postToDto(post))
}

// postGeneratePost has the model write a post for a client's subreddit and
// stores it through the scheduler: a draft when no schedule time is given,
// a scheduled post otherwise.
func (hg *apiHandlerGroup) postGeneratePost(w http.ResponseWriter, r *http.Request) {
	hg.logger.Info("POST /api/posts/generate: Request received")
	body := readBody(hg.logger, w, r)
	if body == nil {
		return
	}
	var req dto.GeneratePostReq
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorResponse(w, badRequestStr, http.StatusBadRequest)
		return
	}
	client, err := hg.repo.GetClient(req.ClientId)
	if err != nil {
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	if client == nil {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}
	sub, err := hg.repo.GetSubreddit(req.SubredditId)
	if err != nil {
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	if sub == nil || sub.ClientId != req.ClientId {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}
	title, content, err := hg.content.GeneratePost(r.Context(), client, sub.Name,
		req.Topic, req.PostType, req.IncludeProduct)
	if err != nil {
		hg.logger.Errorf("Failed to generate post for client %s: %v", req.ClientId, err)
		writeErrorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}
	post, err := hg.poster.CreateScheduledPost(req.ClientId, req.SubredditId, title,
		content, "text", "", "ai", req.ScheduledAt)
	if err != nil {
		writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJsonResponse(hg.logger, w, postToDto(post))
}

func (hg *apiHandlerGroup) postClientOnboard(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	hg.logger.Infof("POST /api/clients/%s/onboard: Request received", id)
	body := readBody(hg.logger, w, r)
	if body == nil {
		return
	}
	var req dto.OnboardClientReq
	if err := json.Unmarshal(body, &req); err != nil || req.WebsiteUrl == "" {
		writeErrorResponse(w, "website_url is required", http.StatusBadRequest)
		return
	}
	client, err := hg.repo.GetClient(id)
	if err != nil {
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	if client == nil {
		writeErrorResponse(w, notFoundStr, http.StatusNotFound)
		return
	}
	info, err := hg.scraper.ScrapeProductInfo(r.Context(), req.WebsiteUrl)
	if err != nil {
		writeErrorResponse(w, err.Error(), http.StatusBadGateway)
		return
	}
	if err = hg.repo.UpdateClientProduct(id, info.Name, info.Description, info.Features); err != nil {
		hg.logger.Errorf("Failed to store product info for client %s: %v", id, err)
		writeErrorResponse(w, internalErrorStr, http.StatusInternalServerError)
		return
	}
	client.ProductName = info.Name
	client.ProductDescription = info.Description
	client.ValueProps = info.Features

	// Keyword and subreddit generation are best-effort: the product info is
	// already saved, and either list can be curated by hand later.
	keywordCount := hg.generateKeywords(r.Context(), client)
	subredditCount := hg.suggestSubreddits(r.Context(), client)

	details, _ := json.Marshal(map[string]int{
		"keywords_generated": keywordCount, "subreddits_suggested": subredditCount,
	})
	err = hg.repo.AddActivity(&dal.ActivityEntry{
		ActivityType: "client_onboarded",
		ClientId:     id,
		EntityType:   "client",
		EntityId:     id,
		Details:      string(details),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		hg.logger.Warnf("Failed to log onboarding of client %s: %v", id, err)
	}
	writeJsonResponse(hg.logger, w, dto.OnboardResult{
		Product: dto.ProductInfo{
			Name:        info.Name,
			Description: info.Description,
			Features:    info.Features,
		},
		KeywordsGenerated:   keywordCount,
		SubredditsSuggested: subredditCount,
	})
}

func (hg *apiHandlerGroup) generateKeywords(ctx context.Context, client *dal.Client) int {
	suggestions, err := hg.content.GenerateKeywords(ctx, client)
	if err != nil {
		hg.logger.Warnf("Failed to generate keywords for client %s: %v", client.Id, err)
		return 0
	}
	count := 0
	for _, kw := range suggestions {
		err = hg.repo.AddKeyword(&dal.Keyword{
			Id:       uuid.NewString(),
			ClientId: client.Id,
			Keyword:  kw.Keyword,
			IsActive: true,
			Priority: kw.Priority,
		})
		if err != nil {
			hg.logger.Warnf("Failed to store keyword %q for client %s: %v", kw.Keyword, client.Id, err)
			continue
		}
		count++
	}
	hg.logger.Infof("Generated %d keywords for client %s", count, client.Id)
	return count
}

func (hg *apiHandlerGroup) suggestSubreddits(ctx context.Context, client *dal.Client) int {
	suggestions, err := hg.content.SuggestSubreddits(ctx, client)
	if err != nil {
		hg.logger.Warnf("Failed to suggest subreddits for client %s: %v", client.Id, err)
		return 0
	}
	count := 0
	for _, sub := range suggestions {
		err = hg.repo.AddSubreddit(&dal.Subreddit{
			Id:             uuid.NewString(),
			ClientId:       client.Id,
			Name:           sub.Name,
			IsActive:       true,
			RelevanceScore: sub.Relevance,
		})
		if err != nil {
			hg.logger.Warnf("Failed to store subreddit r/%s for client %s: %v", sub.Name, client.Id, err)
			continue
		}
		count++
	}
	hg.logger.Infof("Suggested %d subreddits for client %s", count, client.Id)
	return count
}

func postToDto(post *dal.ScheduledPost) dto.Post {
	return dto.Post{
		Id:          post.Id,
		ClientId:    post.ClientId,
		SubredditId: post.SubredditId,
		Title:       post.Title,
		Status:      post.Status,
		ScheduledAt: post.ScheduledAt,
		CreatedAt:   post.CreatedAt,
	}
}

func accountToDto(acct *dal.Account) dto.Account {
	return dto.Account{
		Id:             acct.Id,
		ClientId:       acct.ClientId,
		Username:       acct.Username,
		Status:         acct.Status,
		WarmupStage:    acct.WarmupStage,
		Karma:          acct.Karma,
		AccountAgeDays: acct.AccountAgeDays,
		CreatedAt:      acct.CreatedAt,
	}
}

func warmupStatusToDto(status *logic.WarmupStatus) dto.WarmupStatus {
	res := dto.WarmupStatus{
		AccountId:      status.AccountId,
		Username:       status.Username,
		Status:         status.Status,
		CurrentStage:   status.CurrentStage,
		StageName:      status.StageName,
		Karma:          status.Karma,
		AccountAgeDays: status.AccountAgeDays,
		IsReady:        status.IsReady,
	}
	if status.Next != nil {
		res.NextStage = &dto.NextStage{
			Stage:          status.Next.Stage,
			DaysRequired:   status.Next.DaysRequired,
			DaysRemaining:  status.Next.DaysRemaining,
			KarmaRequired:  status.Next.KarmaRequired,
			KarmaRemaining: status.Next.KarmaRemaining,
		}
	}
	return res
}
