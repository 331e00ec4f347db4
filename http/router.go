package http

import "net/http"

// NewRouter registers the savings API. Every route goes through the rate
// limiter when one is given.
func NewRouter(
	limiter *RateLimiter,
	savings *SavingsHandler,
	projections *ProjectionHandler,
) *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		if limiter == nil {
			mux.Handle(pattern, fn)
			return
		}
		mux.Handle(pattern, RateLimitMiddleware(limiter, fn))
	}

	handle("/savings/fields", savings.Fields)
	handle("/savings/sessions", savings.CreateSession)
	handle("/savings/sessions/{id}", savings.Session)
	handle("/savings/sessions/{id}/edit", savings.Edit)
	handle("/savings/sessions/{id}/set", savings.Set)
	handle("/savings/sessions/{id}/recompute", savings.Recompute)
	handle("/savings/sessions/{id}/auto", savings.AutoCalculate)
	handle("/savings/sessions/{id}/reset", savings.Reset)
	handle("/savings/sessions/{id}/projection", projections.Project)
	return mux
}
