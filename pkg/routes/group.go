package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the
// accumulated prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux and returns the
// registered patterns in registration order.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		patterns = group.register(mux, "", patterns)
	}
	return patterns
}

func (g Group) register(mux *http.ServeMux, parent string, patterns []string) []string {
	prefix := parent + g.Prefix
	for _, route := range g.Routes {
		pattern := route.on(prefix)
		mux.HandleFunc(pattern, route.Handler)
		patterns = append(patterns, pattern)
	}
	for _, child := range g.Children {
		patterns = child.register(mux, prefix, patterns)
	}
	return patterns
}
