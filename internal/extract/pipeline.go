package extract

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"leadscout-engine/internal/extract/types"
	"leadscout-engine/internal/extract/util"
	"leadscout-engine/internal/proxy"

	"github.com/cenkalti/backoff/v4"
)

type Options struct {
	MaxPages       int           // hard page ceiling per job
	RetryCeiling   int           // transient retries per page
	SkipLimit      int           // consecutive skipped pages before giving up
	RequestTimeout time.Duration // per outbound call
	JitterMin      time.Duration // inter-request pacing window
	JitterMax      time.Duration
}

func (o *Options) fill() {
	if o.MaxPages <= 0 {
		o.MaxPages = 20
	}
	if o.RetryCeiling <= 0 {
		o.RetryCeiling = 3
	}
	if o.SkipLimit <= 0 {
		o.SkipLimit = 3
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.JitterMax < o.JitterMin {
		o.JitterMax = o.JitterMin
	}
}

// Pipeline walks the paginated results of one query. Each Next call paces,
// picks a proxy, fetches one page with bounded retries, and hands back the
// raw listings. A returned error is always job-fatal; transient trouble is
// absorbed here (retried, or the page is skipped).
type Pipeline struct {
	src     types.Source
	q       types.Query
	pool    *proxy.Pool // nil means direct connections
	limiter *util.HostLimiter
	opts    Options

	page  int
	skips int
	done  bool
}

func NewPipeline(src types.Source, q types.Query, pool *proxy.Pool, limiter *util.HostLimiter, opts Options) *Pipeline {
	opts.fill()
	return &Pipeline{src: src, q: q, pool: pool, limiter: limiter, opts: opts}
}

// Next returns the next batch of raw listings. more=false means the query
// is exhausted. err != nil means the job cannot continue (pool exhausted
// or unrecognized markup).
func (p *Pipeline) Next(ctx context.Context) (pg types.Page, more bool, err error) {
	if p.done {
		return types.Page{}, false, nil
	}

	// Pacing first: jitter emulates human cadence, the host limiter keeps
	// concurrent jobs against the same target under one budget.
	if p.page > 0 {
		if err := p.pause(ctx); err != nil {
			return types.Page{}, false, err
		}
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, p.src.Name()); err != nil {
			return types.Page{}, false, err
		}
	}

	pg, err = p.fetchPage(ctx)
	if err != nil {
		if isFatal(err) {
			p.done = true
			return types.Page{}, false, err
		}
		// Retry ceiling exceeded for this page: skip it, not the job.
		p.skips++
		log.Printf("[extract:%s] page %d skipped after retries: %v", p.src.Name(), p.page, err)
		if p.skips >= p.opts.SkipLimit {
			p.done = true
			return types.Page{}, false, nil
		}
		p.page++
		return types.Page{}, true, nil
	}

	p.skips = 0
	p.page++
	if !pg.HasMore || p.page >= p.opts.MaxPages {
		p.done = true
	}
	return pg, !p.done, nil
}

func (p *Pipeline) fetchPage(ctx context.Context) (types.Page, error) {
	var pg types.Page

	op := func() error {
		var ep *proxy.Endpoint
		client := &http.Client{Timeout: p.opts.RequestTimeout}
		if p.pool != nil {
			var err error
			ep, err = p.pool.Pick()
			if err != nil {
				return backoff.Permanent(fmt.Errorf("select proxy: %w", err))
			}
			client.Transport = &http.Transport{Proxy: http.ProxyURL(ep.URL())}
		}

		res, err := p.src.FetchPage(ctx, client, p.q, p.page)
		if err != nil {
			if errors.Is(err, types.ErrBadMarkup) {
				return backoff.Permanent(err)
			}
			// Timeouts, refusals and block signals count against the
			// proxy that carried the request.
			if ep != nil {
				p.pool.ReportFailure(ep)
			}
			return err
		}
		if ep != nil {
			p.pool.ReportSuccess(ep)
		}
		pg = res
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.opts.RetryCeiling)),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return types.Page{}, err
	}
	return pg, nil
}

func (p *Pipeline) pause(ctx context.Context) error {
	d := p.opts.JitterMin
	if span := p.opts.JitterMax - p.opts.JitterMin; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isFatal(err error) bool {
	return errors.Is(err, proxy.ErrExhausted) || errors.Is(err, types.ErrBadMarkup)
}
