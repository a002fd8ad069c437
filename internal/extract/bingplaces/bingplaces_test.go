package bingplaces

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
<div id="b_results">
  <div class="b_localDescription">
    <h2>Ace Plumbing</h2>
    <a href="https://aceplumbing.com">site</a>
    <a href="tel:5125550100">call</a>
    <span class="lc_addr">100 Main St, Austin, TX</span>
  </div>
  <div class="b_localDescription">
    <h2>Budget Rooter</h2>
    <span class="lc_phone">(512) 555-0199</span>
  </div>
  <a class="sb_pagN" href="/search?first=21">Next</a>
</div>
</body></html>`

func TestFetchPageParsesListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsHTML))
	}))
	t.Cleanup(srv.Close)

	src := New()
	src.BaseURL = srv.URL

	page, err := src.FetchPage(context.Background(), srv.Client(), types.Query{SearchTerm: "plumber"}, 0)
	require.NoError(t, err)
	require.Len(t, page.Listings, 2)
	assert.True(t, page.HasMore)

	assert.Equal(t, "Ace Plumbing", page.Listings[0].Name)
	assert.Equal(t, "https://aceplumbing.com", page.Listings[0].Website)
	assert.Equal(t, "5125550100", page.Listings[0].Phone)
	assert.Equal(t, "100 Main St, Austin, TX", page.Listings[0].Address)

	assert.Equal(t, "Budget Rooter", page.Listings[1].Name)
	assert.Equal(t, "(512) 555-0199", page.Listings[1].Phone)
}

func TestFetchPageEmptyAndBadMarkup(t *testing.T) {
	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="b_results"></div></body></html>`))
	}))
	t.Cleanup(empty.Close)

	src := New()
	src.BaseURL = empty.URL
	page, err := src.FetchPage(context.Background(), empty.Client(), types.Query{SearchTerm: "x"}, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Listings)
	assert.False(t, page.HasMore)

	weird := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>captcha</p></body></html>`))
	}))
	t.Cleanup(weird.Close)

	src.BaseURL = weird.URL
	_, err = src.FetchPage(context.Background(), weird.Client(), types.Query{SearchTerm: "x"}, 0)
	assert.ErrorIs(t, err, types.ErrBadMarkup)
}

func TestSearchURLPagination(t *testing.T) {
	src := New()
	u := src.searchURL(types.Query{SearchTerm: "plumber", Location: "Austin"}, 3)
	assert.Contains(t, u, "first=61")
}
