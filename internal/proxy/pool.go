package proxy

import (
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrExhausted means every endpoint is dead or still cooling down.
var ErrExhausted = errors.New("proxy pool exhausted: no healthy endpoints")

type Health int

const (
	Healthy Health = iota
	Cooling
	Dead
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Cooling:
		return "cooling"
	case Dead:
		return "dead"
	}
	return "unknown"
}

// Endpoint is one outbound proxy with its health state. Endpoints live in a
// fixed arena for the whole run; dead entries stay in place but are never
// picked again.
type Endpoint struct {
	mu            sync.Mutex
	addr          string // host:port
	username      string
	password      string
	health        Health
	failures      int // consecutive
	cooldownUntil time.Time
}

func (e *Endpoint) Addr() string { return e.addr }

// URL builds the proxy URL for an http.Transport, including credentials
// when the pool was configured with them.
func (e *Endpoint) URL() *url.URL {
	u := &url.URL{Scheme: "http", Host: e.addr}
	if e.username != "" {
		u.User = url.UserPassword(e.username, e.password)
	}
	return u
}

type Options struct {
	Username       string
	Password       string
	FailureCeiling int           // failures before an endpoint is marked dead
	CooldownBase   time.Duration // first cooldown; doubles per failure
	CooldownMax    time.Duration
}

type Pool struct {
	endpoints []*Endpoint
	opts      Options

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewPool(addrs []string, opts Options) (*Pool, error) {
	if opts.FailureCeiling <= 0 {
		opts.FailureCeiling = 5
	}
	if opts.CooldownBase <= 0 {
		opts.CooldownBase = 30 * time.Second
	}
	if opts.CooldownMax <= 0 {
		opts.CooldownMax = 15 * time.Minute
	}

	p := &Pool{
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !strings.Contains(a, ":") {
			return nil, fmt.Errorf("proxy %q: want host:port", a)
		}
		p.endpoints = append(p.endpoints, &Endpoint{
			addr:     a,
			username: opts.Username,
			password: opts.Password,
		})
	}
	if len(p.endpoints) == 0 {
		return nil, errors.New("proxy pool needs at least one endpoint")
	}
	return p, nil
}

// Size returns the number of endpoints in the arena, dead ones included.
func (p *Pool) Size() int { return len(p.endpoints) }

// Pick selects a healthy endpoint by weighted random choice; endpoints with
// a failure history weigh less. Cooling endpoints whose cooldown elapsed
// are revived first. Returns ErrExhausted when nothing is selectable.
func (p *Pool) Pick() (*Endpoint, error) {
	now := time.Now()

	type cand struct {
		ep *Endpoint
		w  float64
	}
	var cands []cand
	var total float64

	for _, e := range p.endpoints {
		e.mu.Lock()
		if e.health == Cooling && !now.Before(e.cooldownUntil) {
			e.health = Healthy
		}
		if e.health == Healthy {
			w := 1.0 / float64(1+e.failures)
			cands = append(cands, cand{ep: e, w: w})
			total += w
		}
		e.mu.Unlock()
	}

	if len(cands) == 0 {
		return nil, ErrExhausted
	}

	p.rngMu.Lock()
	r := p.rng.Float64() * total
	p.rngMu.Unlock()

	for _, c := range cands {
		r -= c.w
		if r <= 0 {
			return c.ep, nil
		}
	}
	return cands[len(cands)-1].ep, nil
}

// ReportSuccess clears the endpoint's consecutive failure count.
func (p *Pool) ReportSuccess(e *Endpoint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures = 0
	if e.health == Cooling {
		e.health = Healthy
	}
}

// ReportFailure records a proxy-attributable failure (timeout, refusal,
// upstream block signal). The endpoint cools down for CooldownBase×2^n,
// capped, and goes dead past the failure ceiling.
func (p *Pool) ReportFailure(e *Endpoint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.health == Dead {
		return
	}
	e.failures++
	if e.failures >= p.opts.FailureCeiling {
		e.health = Dead
		return
	}

	d := p.opts.CooldownBase << (e.failures - 1)
	if d > p.opts.CooldownMax || d <= 0 {
		d = p.opts.CooldownMax
	}
	e.health = Cooling
	e.cooldownUntil = time.Now().Add(d)
}

type Stats struct {
	Healthy int `json:"healthy"`
	Cooling int `json:"cooling"`
	Dead    int `json:"dead"`
}

func (p *Pool) Stats() Stats {
	var st Stats
	now := time.Now()
	for _, e := range p.endpoints {
		e.mu.Lock()
		h := e.health
		if h == Cooling && !now.Before(e.cooldownUntil) {
			h = Healthy
		}
		e.mu.Unlock()
		switch h {
		case Healthy:
			st.Healthy++
		case Cooling:
			st.Cooling++
		case Dead:
			st.Dead++
		}
	}
	return st
}

// MarkDead force-kills an endpoint. Used by tests and by startup checks
// when an endpoint is known bad.
func (p *Pool) MarkDead(e *Endpoint) {
	e.mu.Lock()
	e.health = Dead
	e.mu.Unlock()
}

// Endpoints exposes the arena for iteration (health checks, stats).
func (p *Pool) Endpoints() []*Endpoint { return p.endpoints }
