package logic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growth_engine/shared"
)

const samplePage = `<!DOCTYPE html>
<html><head>
<title>AcmeBot – Widget Sorting</title>
<meta property="og:site_name" content="AcmeBot">
<meta name="description" content="AcmeBot sorts your widgets automatically.">
</head><body>
<h1>Sort widgets without the spreadsheet</h1>
<h2>Automatic <b>color</b> detection</h2>
<ul>
<li>Sorts up to 10,000 widgets per hour</li>
<li>ok</li>
<li>Integrates with your existing bins</li>
</ul>
</body></html>`

func testScraper(t *testing.T, handler http.HandlerFunc) (*websiteScraper, string) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &shared.Config{UserAgent: "growth-engine/1.0"}
	ws := &websiteScraper{
		cfg:    cfg,
		logger: &nullLogger{},
		client: &http.Client{Timeout: 5 * time.Second},
	}
	return ws, srv.URL
}

func TestScrapeProductInfo(t *testing.T) {
	var gotUa string
	ws, addr := testScraper(t, func(w http.ResponseWriter, r *http.Request) {
		gotUa = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(samplePage))
	})

	info, err := ws.ScrapeProductInfo(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "growth-engine/1.0", gotUa)
	assert.Equal(t, "AcmeBot", info.Name)
	assert.Equal(t, "AcmeBot sorts your widgets automatically.", info.Description)
	// Markup stripped, short noise dropped
	assert.Contains(t, info.Features, "Automatic color detection")
	assert.Contains(t, info.Features, "Sorts up to 10,000 widgets per hour")
	assert.NotContains(t, info.Features, "ok")
}

func TestScrapeFallsBackToTitle(t *testing.T) {
	ws, addr := testScraper(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain Site</title></head><body><h1>A heading here</h1></body></html>`))
	})

	info, err := ws.ScrapeProductInfo(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "Plain Site", info.Name)
	assert.Equal(t, "A heading here", info.Description)
}

func TestScrapeErrors(t *testing.T) {
	ws, addr := testScraper(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := ws.ScrapeProductInfo(context.Background(), addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = ws.ScrapeProductInfo(context.Background(), "ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheme")
}
