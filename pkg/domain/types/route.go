package types

import (
	"fmt"
	"strings"
)

// Route is the planner's decision of which search sources to consult
type Route string

const (
	RouteNone  Route = "none"
	RouteWeb   Route = "web"
	RouteArxiv Route = "arxiv"
	RouteBoth  Route = "both"
)

// AllRoutes returns all valid routes
func AllRoutes() []Route {
	return []Route{
		RouteNone,
		RouteWeb,
		RouteArxiv,
		RouteBoth,
	}
}

// IsValid checks if the route is valid
func (r Route) IsValid() bool {
	switch r {
	case RouteNone, RouteWeb, RouteArxiv, RouteBoth:
		return true
	default:
		return false
	}
}

// NeedsWeb reports whether the route requires the web search adapter
func (r Route) NeedsWeb() bool {
	return r == RouteWeb || r == RouteBoth
}

// NeedsArxiv reports whether the route requires the arXiv adapter
func (r Route) NeedsArxiv() bool {
	return r == RouteArxiv || r == RouteBoth
}

// String returns the string representation of the route
func (r Route) String() string {
	return string(r)
}

// ParseRoute parses a string into a Route. Input is case-insensitive;
// any value outside the fixed enum is an error, never a default.
func ParseRoute(s string) (Route, error) {
	route := Route(strings.ToLower(strings.TrimSpace(s)))
	if !route.IsValid() {
		return "", fmt.Errorf("invalid route: %s", s)
	}
	return route, nil
}
