package types

import (
	"context"
	"errors"
	"net/http"
)

// ErrBadMarkup signals that the target returned a page whose structure the
// parser does not recognize (layout change or interstitial). Fatal for the
// job; retrying the same markup on another proxy will not help.
var ErrBadMarkup = errors.New("unrecognized listing markup")

// ErrBlocked signals an upstream block response (captcha page, 403/429).
// Transient: attributable to the proxy that carried the request.
var ErrBlocked = errors.New("request blocked by target")

// Query is the intent of one job: what to search for, and where.
type Query struct {
	SearchTerm   string
	BusinessType string
	Location     string
}

// Terms joins the query parts the way a human would type them into the
// target's search box.
func (q Query) Terms() string {
	s := q.SearchTerm
	if q.Location != "" {
		s += " " + q.Location
	}
	return s
}

// Listing is one raw entry from a result page, prior to normalization.
type Listing struct {
	Name    string
	Phone   string
	Website string
	Email   string
	Address string
}

// Page is one fetched batch of listings.
type Page struct {
	Listings []Listing
	HasMore  bool
}

// Source fetches one page of raw listings from a target service. The
// client carries the proxy transport and timeout chosen by the pipeline.
type Source interface {
	Name() string
	FetchPage(ctx context.Context, client *http.Client, q Query, page int) (Page, error)
}
