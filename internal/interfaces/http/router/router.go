// Package router assembles the versioned REST routes of the billing API.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Router mounts resource groups under /api/<version>
type Router struct {
	engine  *gin.Engine
	version string
	groups  []*DomainGroup
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the version segment of the prefix. Default: v1
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

// NewRouter creates a Router over engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues groups for Setup
func (r *Router) Register(groups ...*DomainGroup) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Setup mounts every registered group on the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.basePath())
	for _, g := range r.groups {
		g.mount(api)
	}
}

// Routes lists the registered routes as "METHOD /full/path", in
// registration order
func (r *Router) Routes() []string {
	var out []string
	for _, g := range r.groups {
		for _, rt := range g.routes {
			out = append(out, rt.method+" "+path.Join(r.basePath(), g.prefix, rt.path))
		}
	}
	return out
}

func (r *Router) basePath() string {
	return "/api/" + r.version
}

// DomainGroup collects the routes of one resource under a common prefix
type DomainGroup struct {
	name       string
	prefix     string
	routes     []route
	middleware []gin.HandlerFunc
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group. An empty prefix mounts the routes
// directly under the API root.
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware applied to this group only
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, path, handlers)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) add(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

func (dg *DomainGroup) mount(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string { return dg.name }

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string { return dg.prefix }
