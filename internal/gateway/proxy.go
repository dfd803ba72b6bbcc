package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"ms-park-access/internal/logger"
)

type route struct {
	prefix string
	target string
	proxy  *httputil.ReverseProxy
}

// Gateway dispatches requests to backend services by path prefix. It knows
// nothing about the services beyond their base URLs; routing is the whole
// contract.
type Gateway struct {
	routes []route
	logger *logger.Logger
}

func New(log *logger.Logger) *Gateway {
	return &Gateway{logger: log}
}

// Register maps a path prefix to a backend base URL. Prefixes are matched in
// registration order, first match wins.
func (g *Gateway) Register(prefix, target string) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid target %q for prefix %s: %w", target, prefix, err)
	}
	g.routes = append(g.routes, route{
		prefix: prefix,
		target: target,
		proxy:  httputil.NewSingleHostReverseProxy(parsed),
	})
	return nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, rt := range g.routes {
		if strings.HasPrefix(r.URL.Path, rt.prefix) {
			g.logger.LogGateway(r.Method, r.URL.Path, rt.target)
			rt.proxy.ServeHTTP(w, r)
			return
		}
	}

	g.logger.Warn("GATEWAY", fmt.Sprintf("No service mapped for %s", r.URL.Path))
	http.Error(w, "Service not found", http.StatusNotFound)
}
