package completion

import (
	"context"
	"fmt"
	"sort"
)

// Router dispatches each call to the Service registered for its tier. Build it
// fully before use; it is not safe to register routes concurrently with calls.
type Router struct {
	routes   map[string]Service
	fallback Service
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Service)}
}

// Route registers service for tier and returns the router for chaining.
func (r *Router) Route(tier string, service Service) *Router {
	r.routes[tier] = service
	return r
}

// Default registers the service used for tiers without an explicit route.
func (r *Router) Default(service Service) *Router {
	r.fallback = service
	return r
}

// Tiers returns the explicitly routed tier names, sorted.
func (r *Router) Tiers() []string {
	tiers := make([]string, 0, len(r.routes))
	for tier := range r.routes {
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	return tiers
}

// Complete forwards to the service for tier. An unrouted tier with no default
// is a configuration error.
func (r *Router) Complete(ctx context.Context, tier, prompt string) (string, error) {
	service, ok := r.routes[tier]
	if !ok {
		service = r.fallback
	}
	if service == nil {
		return "", &Error{Kind: ErrConfig, Provider: "router", Err: fmt.Errorf("no service for tier %q", tier)}
	}
	return service.Complete(ctx, tier, prompt)
}
