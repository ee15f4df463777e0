package httpclient

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter はホスト名ごとにリクエスト間隔を制限します。
type hostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
}

// newHostLimiter は reqPerSec が0以下の場合、無制限のリミッターを生成します。
func newHostLimiter(reqPerSec float64) *hostLimiter {
	r := rate.Inf
	if reqPerSec > 0 {
		r = rate.Limit(reqPerSec)
	}
	return &hostLimiter{
		m: make(map[string]*rate.Limiter),
		r: r,
	}
}

func (hl *hostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, 1)
	hl.m[host] = lim
	return lim
}

func (hl *hostLimiter) wait(ctx context.Context, host string) error {
	if hl == nil || hl.r == rate.Inf {
		return nil
	}
	if host == "" {
		host = "_"
	}
	return hl.limiterFor(host).Wait(ctx)
}
