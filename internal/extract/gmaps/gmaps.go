package gmaps

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

const SourceName = "google_maps"

// Source reads the Google local-results HTML (tbm=lcl), which paginates
// with a start offset of 20 per page. This is the server-rendered view of
// the same listings the Maps UI lazy-loads.
type Source struct {
	BaseURL  string // override in tests
	PageSize int
}

func New() *Source {
	return &Source{
		BaseURL:  "https://www.google.com/search",
		PageSize: 20,
	}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) searchURL(q types.Query, page int) string {
	v := url.Values{}
	v.Set("q", q.Terms())
	v.Set("tbm", "lcl")
	if page > 0 {
		v.Set("start", fmt.Sprint(page*s.PageSize))
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
		return types.Page{}, fmt.Errorf("gmaps get results: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusTooManyRequests:
		return types.Page{}, fmt.Errorf("gmaps status %d: %w", res.StatusCode, types.ErrBlocked)
	case res.StatusCode >= 400:
		return types.Page{}, fmt.Errorf("gmaps status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return types.Page{}, fmt.Errorf("gmaps parse html: %w", err)
	}
	return parseResults(doc)
}

func parseResults(doc *goquery.Document) (types.Page, error) {
	cards := doc.Find("div[role='article']")
	if cards.Length() == 0 {
		cards = doc.Find("div.Nv2PK, div.VkpGBb")
	}
	if cards.Length() == 0 {
		// Distinguish "no results for this query" from a layout we cannot
		// read. An empty-results page still carries the result container.
		if doc.Find("#search, div[role='main']").Length() > 0 {
			return types.Page{HasMore: false}, nil
		}
		return types.Page{}, types.ErrBadMarkup
	}

	var out []types.Listing
	cards.Each(func(_ int, card *goquery.Selection) {
		l := parseCard(card)
		if l.Name == "" && l.Phone == "" && l.Website == "" {
			return
		}
		out = append(out, l)
	})

	hasMore := doc.Find("a#pnnext, a[aria-label='Next page']").Length() > 0
	return types.Page{Listings: out, HasMore: hasMore}, nil
}

func parseCard(card *goquery.Selection) types.Listing {
	var l types.Listing

	if h := card.Find("div[role='heading'] span").First(); h.Length() > 0 {
		l.Name = util.CleanText(h.Text())
	}
	if l.Name == "" {
		l.Name = util.CleanText(card.Find("div.dbg0pd, span.OSrXXb").First().Text())
	}
	if l.Name == "" {
		if al, ok := card.Attr("aria-label"); ok {
			l.Name = util.CleanText(al)
		}
	}

	// Website: first external anchor that is not a Google URL.
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "/") {
			return true
		}
		low := strings.ToLower(href)
		if strings.Contains(low, "google.com") || strings.HasPrefix(low, "tel:") {
			return true
		}
		l.Website = href
		return false
	})

	// Phone: tel: anchors first, then phone-shaped text spans.
	if tel := card.Find("a[href^='tel:']").First(); tel.Length() > 0 {
		href, _ := tel.Attr("href")
		l.Phone = strings.TrimPrefix(href, "tel:")
	}
	if l.Phone == "" {
		card.Find("span, div").EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if el.Children().Length() > 0 {
				return true
			}
			t := util.CleanText(el.Text())
			if util.LooksLikePhone(t) {
				l.Phone = t
				return false
			}
			return true
		})
	}

	l.Email = util.FirstEmail(card.Text())
	l.Address = util.CleanText(card.Find("span.rllt__details div, div.rllt__details div").First().Text())
	return l
}
