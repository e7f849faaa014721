package routes

import (
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Khizarkk7/storefront-backend/api-gateway/config"
	"github.com/Khizarkk7/storefront-backend/api-gateway/middlewares"
	"github.com/Khizarkk7/storefront-backend/api-gateway/utils"
)

type route struct {
	rule     config.Rule
	handlers []gin.HandlerFunc
}

// Table resolves a request to the longest matching rule.
type Table struct {
	routes []route
}

func NewTable(cfg *config.Config, log *zap.Logger) *Table {
	secret := []byte(cfg.JWTSecret)
	forwarders := make(map[string]*utils.Forwarder)

	t := &Table{}
	for _, rule := range cfg.Routes {
		rt := route{rule: rule}
		if !rule.Internal {
			fwd, ok := forwarders[rule.Service]
			if !ok {
				fwd = utils.NewForwarder(cfg.Services[rule.Service], cfg.UpstreamTimeout, log)
				forwarders[rule.Service] = fwd
			}
			rt.handlers = append(rt.handlers, middlewares.JWTMiddleware(secret, rule.Auth))
			if len(rule.Roles) > 0 {
				rt.handlers = append(rt.handlers, middlewares.RequireRoles(rule.Roles...))
			}
			rt.handlers = append(rt.handlers, fwd.Handle)
		}
		t.routes = append(t.routes, rt)
	}
	sort.SliceStable(t.routes, func(i, j int) bool {
		return len(t.routes[i].rule.Prefix) > len(t.routes[j].rule.Prefix)
	})
	return t
}

func (t *Table) match(method, p string) *route {
	for i := range t.routes {
		rt := &t.routes[i]
		if p != rt.rule.Prefix && !strings.HasPrefix(p, rt.rule.Prefix+"/") {
			continue
		}
		if len(rt.rule.Methods) > 0 && method != http.MethodOptions && !contains(rt.rule.Methods, method) {
			continue
		}
		return rt
	}
	return nil
}

// Handle runs the matched rule's chain. Internal and unknown paths are 404.
func (t *Table) Handle(c *gin.Context) {
	p := c.Request.URL.Path
	if clean := path.Clean(p); clean != p && clean+"/" != p {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		return
	}
	rt := t.match(c.Request.Method, strings.TrimSuffix(p, "/"))
	if rt == nil || rt.rule.Internal {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
		return
	}
	for _, h := range rt.handlers {
		h(c)
		if c.IsAborted() {
			return
		}
	}
}

// segments lists the distinct first path segments of the table.
func (t *Table) segments() []string {
	seen := map[string]bool{}
	var out []string
	for _, rt := range t.routes {
		seg := strings.SplitN(strings.TrimPrefix(rt.rule.Prefix, "/"), "/", 2)[0]
		if !seen[seg] {
			seen[seg] = true
			out = append(out, seg)
		}
	}
	sort.Strings(out)
	return out
}

// RegisterAllRoutes mounts the table under each service root.
func RegisterAllRoutes(r *gin.Engine, cfg *config.Config, log *zap.Logger) {
	table := NewTable(cfg, log)

	r.Use(middlewares.StripIdentity())
	for _, seg := range table.segments() {
		r.Any("/"+seg, table.Handle)
		r.Any("/"+seg+"/*rest", table.Handle)
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
