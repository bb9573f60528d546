// Package routes declares HTTP route groups and registers them on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// on returns the ServeMux pattern for r under prefix.
func (r Route) on(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
