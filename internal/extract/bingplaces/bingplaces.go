package bingplaces

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"leadscout-engine/internal/extract/types"
	"leadscout-engine/internal/extract/util"

	"github.com/PuerkitoBio/goquery"
)

const SourceName = "bing_places"

// Source reads Bing's local search results. Bing paginates with `first`,
// 1-based, stepping by the page size.
type Source struct {
	BaseURL  string
	PageSize int
}

func New() *Source {
	return &Source{
		BaseURL:  "https://www.bing.com/search",
		PageSize: 20,
	}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) searchURL(q types.Query, page int) string {
	v := url.Values{}
	v.Set("q", q.Terms())
	if page > 0 {
		v.Set("first", fmt.Sprint(page*s.PageSize+1))
	}
	return s.BaseURL + "?" + v.Encode()
}

func (s *Source) FetchPage(ctx context.Context, client *http.Client, q types.Query, page int) (types.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(q, page), nil)
	if err != nil {
		return types.Page{}, err
	}
	util.StealthHeaders(req)

	res, err := client.Do(req)
	if err != nil {
		return types.Page{}, fmt.Errorf("bing get results: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests:
		return types.Page{}, fmt.Errorf("bing status %d: %w", res.StatusCode, types.ErrBlocked)
	case res.StatusCode >= 400:
		return types.Page{}, fmt.Errorf("bing status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return types.Page{}, fmt.Errorf("bing parse html: %w", err)
	}
	return parseResults(doc)
}

func parseResults(doc *goquery.Document) (types.Page, error) {
	cards := doc.Find("div.b_localDescription, li.b_algo .b_entityTP")
	if cards.Length() == 0 {
		cards = doc.Find("div[class*='lc_content'], div.entity-listing")
	}
	if cards.Length() == 0 {
		if doc.Find("#b_results, #b_content").Length() > 0 {
			return types.Page{HasMore: false}, nil
		}
		return types.Page{}, types.ErrBadMarkup
	}

	var out []types.Listing
	cards.Each(func(_ int, card *goquery.Selection) {
		var l types.Listing
		l.Name = util.CleanText(card.Find("h2, div.b_factrow a, a.lc_name").First().Text())

		card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			href = strings.TrimSpace(strings.ToLower(href))
			switch {
			case strings.HasPrefix(href, "tel:"):
				l.Phone = strings.TrimPrefix(href, "tel:")
				return true
			case href == "" || strings.HasPrefix(href, "/") || strings.Contains(href, "bing.com"):
				return true
			default:
				if l.Website == "" {
					l.Website, _ = a.Attr("href")
				}
				return true
			}
		})

		if l.Phone == "" {
			t := util.CleanText(card.Find("span.lc_phone, div.b_factrow").First().Text())
			if util.LooksLikePhone(t) {
				l.Phone = t
			}
		}

		l.Email = util.FirstEmail(card.Text())
		l.Address = util.CleanText(card.Find("span.lc_addr, div.b_address").First().Text())

		if l.Name == "" && l.Phone == "" && l.Website == "" {
			return
		}
		out = append(out, l)
	})

	hasMore := doc.Find("a.sb_pagN, a[title='Next page']").Length() > 0
	return types.Page{Listings: out, HasMore: hasMore}, nil
}
