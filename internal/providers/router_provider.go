package providers

import (
	"citystate/internal/structures"
	"net/http"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
	index  map[string]int
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

// add merges handlers registered for the same URL under different methods
// into one route, since http.ServeMux allows a single pattern per path here.
func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	if i, ok := rp.index[url]; ok {
		existing := rp.routes[i].Handler.(methodMux)
		existing[method] = handler
		return
	}
	rp.index[url] = len(rp.routes)
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: methodMux{method: handler},
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{index: make(map[string]int)}
}

type methodMux map[string]http.Handler

func (m methodMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := m[r.Method]
	if !ok {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	handler.ServeHTTP(w, r)
}
