package gmaps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadscout-engine/internal/extract/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsHTML = `<!doctype html>
<html><body>
<div id="search">
  <div role="article">
    <div role="heading"><span>Ace Plumbing</span></div>
    <a href="https://www.google.com/maps/place/x">map</a>
    <a href="https://aceplumbing.com">site</a>
    <a href="tel:+15125550100">call</a>
    <div class="rllt__details"><div>100 Main St, Austin, TX</div></div>
  </div>
  <div role="article">
    <div role="heading"><span>Budget Rooter</span></div>
    <span>(512) 555-0199</span>
  </div>
  <div role="article">
    <span>no name, no contact</span>
  </div>
  <a id="pnnext" href="/search?start=20">Next</a>
</div>
</body></html>`

const emptyHTML = `<!doctype html>
<html><body><div id="search"><p>did not match any results</p></div></body></html>`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPageParsesListings(t *testing.T) {
	srv := serve(t, http.StatusOK, resultsHTML)
	src := New()
	src.BaseURL = srv.URL

	page, err := src.FetchPage(context.Background(), srv.Client(), types.Query{SearchTerm: "plumber"}, 0)
	require.NoError(t, err)
	require.Len(t, page.Listings, 2, "card without name or contact info is dropped")
	assert.True(t, page.HasMore)

	first := page.Listings[0]
	assert.Equal(t, "Ace Plumbing", first.Name)
	assert.Equal(t, "https://aceplumbing.com", first.Website)
	assert.Equal(t, "+15125550100", first.Phone)
	assert.Equal(t, "100 Main St, Austin, TX", first.Address)

	second := page.Listings[1]
	assert.Equal(t, "Budget Rooter", second.Name)
	assert.Equal(t, "(512) 555-0199", second.Phone)
}

func TestFetchPageEmptyResults(t *testing.T) {
	srv := serve(t, http.StatusOK, emptyHTML)
	src := New()
	src.BaseURL = srv.URL

	page, err := src.FetchPage(context.Background(), srv.Client(), types.Query{SearchTerm: "plumber"}, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Listings)
	assert.False(t, page.HasMore)
}

func TestFetchPageUnrecognizedMarkup(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html><body><p>something else entirely</p></body></html>`)
	src := New()
	src.BaseURL = srv.URL

	_, err := src.FetchPage(context.Background(), srv.Client(), types.Query{SearchTerm: "plumber"}, 0)
	assert.ErrorIs(t, err, types.ErrBadMarkup)
}

func TestFetchPageBlockedStatus(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		srv := serve(t, status, "")
		src := New()
		src.BaseURL = srv.URL

		_, err := src.FetchPage(context.Background(), srv.Client(), types.Query{SearchTerm: "plumber"}, 0)
		assert.ErrorIs(t, err, types.ErrBlocked, "status %d", status)
	}
}

func TestSearchURLPagination(t *testing.T) {
	src := New()

	u0 := src.searchURL(types.Query{SearchTerm: "plumber", Location: "Austin"}, 0)
	assert.NotContains(t, u0, "start=")

	u2 := src.searchURL(types.Query{SearchTerm: "plumber", Location: "Austin"}, 2)
	assert.Contains(t, u2, "start=40")
	assert.Contains(t, u2, "tbm=lcl")
}
