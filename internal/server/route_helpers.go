package server

import (
	"net/http"
	"slices"
	"strings"
)

// RouteHandler is a function type for HTTP handlers.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers. HEAD is served by the GET
// handler when no HEAD handler is routed.
type MethodRouter map[string]RouteHandler

// ServeHTTP dispatches by method. Unrouted methods get 405 with an Allow
// header naming the routed ones.
func (m MethodRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := m[r.Method]
	if !ok && r.Method == http.MethodHead {
		handler, ok = m[http.MethodGet]
	}
	if !ok || handler == nil {
		w.Header().Set("Allow", m.allow())
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

func (m MethodRouter) allow() string {
	methods := make([]string, 0, len(m)+1)
	for method, h := range m {
		if h != nil {
			methods = append(methods, method)
		}
	}
	if m[http.MethodGet] != nil && m[http.MethodHead] == nil {
		methods = append(methods, http.MethodHead)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

// RouteSetting serves a dashboard setting such as the periods or theme:
// GET reads the current value, POST changes it.
func RouteSetting(read, write RouteHandler) MethodRouter {
	return MethodRouter{
		http.MethodGet:  read,
		http.MethodPost: write,
	}
}
