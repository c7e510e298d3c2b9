// Package router maps inbound activities to the ordered set of registered
// handlers. Routes are registered once at startup and evaluated in
// registration order; application code controls precedence by registering
// more specific routes first.
package router

import (
	"strings"

	"github.com/soyeahso/botway/internal/activity"
)

// Route is an immutable (predicate, handler) pair. The predicate is the
// conjunction of an activity-type match, an optional invoke/event name
// match, and an optional text matcher (messages only).
type Route[H any] struct {
	// Type restricts the route to one activity type. Empty matches any type.
	Type activity.Type

	// Name restricts invoke/event routes to a subtype, compared
	// case-insensitively against the activity name. Empty matches any.
	Name string

	// Text restricts message routes by content. A non-nil matcher never
	// matches non-message activities.
	Text Matcher

	// Handler is invoked when the predicate matches.
	Handler H
}

func (r *Route[H]) matches(a *activity.Activity) bool {
	if r.Type != "" && r.Type != a.Type {
		return false
	}
	if r.Name != "" && !strings.EqualFold(r.Name, a.Name) {
		return false
	}
	if r.Text != nil {
		if a.Type != activity.TypeMessage {
			return false
		}
		return r.Text.Match(a.Text)
	}
	return true
}

// Router holds the registered routes. Registration happens at startup; the
// route list is treated as immutable once traffic is being served.
type Router[H any] struct {
	routes []Route[H]
}

// New creates an empty router.
func New[H any]() *Router[H] {
	return &Router[H]{}
}

// Register appends a route. Routes are never mutated after registration.
func (r *Router[H]) Register(route Route[H]) {
	r.routes = append(r.routes, route)
}

// Select returns the handlers of every route matching the activity, strictly
// in registration order. Complexity is O(routes) per activity; route count
// is bounded by application handler count, set once at startup.
func (r *Router[H]) Select(a *activity.Activity) []H {
	var matched []H
	for i := range r.routes {
		if r.routes[i].matches(a) {
			matched = append(matched, r.routes[i].Handler)
		}
	}
	return matched
}

// Len returns the number of registered routes.
func (r *Router[H]) Len() int {
	return len(r.routes)
}
