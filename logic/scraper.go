package logic

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"growth_engine/shared"
)

//go:generate mockgen --build_flags=--mod=mod -destination ../test/mocks/mock_scraper.go -package mocks growth_engine/logic IWebsiteScraper

const scrapeTimeoutSec = 20
const maxScrapedFeatures = 8
const maxFeatureLen = 200

// ProductInfo is what client onboarding learns from the client's website.
type ProductInfo struct {
	Name        string
	Description string
	Features    []string
}

type IWebsiteScraper interface {
	ScrapeProductInfo(ctx context.Context, siteUrl string) (*ProductInfo, error)
}

type websiteScraper struct {
	cfg    *shared.Config
	logger shared.ILogger
	client *http.Client
}

func NewWebsiteScraper(cfg *shared.Config, logger shared.ILogger) IWebsiteScraper {
	return &websiteScraper{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: scrapeTimeoutSec * time.Second},
	}
}

func (ws *websiteScraper) ScrapeProductInfo(ctx context.Context, siteUrl string) (*ProductInfo, error) {

	parsed, err := url.Parse(siteUrl)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ws.cfg.UserAgent)
	resp, err := ws.client.Do(req)
	if err != nil {
		ws.logger.Warnf("Failed to get %s: %v", siteUrl, err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		err = fmt.Errorf("request for %s failed with status %d", siteUrl, resp.StatusCode)
		ws.logger.Warnf("Failed to get site: %v", err)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		ws.logger.Warnf("Failed to parse HTML from %s: %v", siteUrl, err)
		return nil, err
	}

	pol := bluemonday.StrictPolicy()
	clean := func(s string) string {
		return strings.Join(strings.Fields(pol.Sanitize(s)), " ")
	}

	var res ProductInfo
	res.Name = clean(doc.Find("meta[property='og:site_name']").First().AttrOr("content", ""))
	if res.Name == "" {
		res.Name = clean(doc.Find("title").First().Text())
	}
	res.Description = clean(doc.Find("meta[name='description']").First().AttrOr("content", ""))
	if res.Description == "" {
		res.Description = clean(doc.Find("meta[property='og:description']").First().AttrOr("content", ""))
	}
	if res.Description == "" {
		res.Description = clean(doc.Find("h1").First().Text())
	}

	seen := map[string]bool{}
	doc.Find("h2, h3, li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := clean(s.Text())
		if len(text) < 10 || len(text) > maxFeatureLen {
			return true
		}
		if seen[text] {
			return true
		}
		seen[text] = true
		res.Features = append(res.Features, text)
		return len(res.Features) < maxScrapedFeatures
	})

	if res.Name == "" && res.Description == "" {
		return nil, fmt.Errorf("no usable product info found at %s", siteUrl)
	}
	ws.logger.Infof("Scraped %s: %q, %d features", siteUrl, res.Name, len(res.Features))
	return &res, nil
}
