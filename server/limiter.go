package server

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/linanwx/chatwidget/client"
)

// limiterPool keeps one token bucket per client address.
type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return &limiterPool{m: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.m[key]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.m[key] = l
	return l
}

// Allow reports whether a request from key may proceed now.
func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}

// clientKey picks the rate limit bucket for r. Widget sessions relay
// through this process, so a loopback request carrying client.ClientHeader
// is charged to the browser connection it names.
func clientKey(r *http.Request) string {
	ip := clientIP(r)
	if id := r.Header.Get(client.ClientHeader); id != "" {
		if addr := net.ParseIP(ip); addr != nil && addr.IsLoopback() {
			return "widget:" + id
		}
	}
	return ip
}

func clientIP(r *http.Request) string {
	// Direct connections only; X-Forwarded-For is not trusted.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
