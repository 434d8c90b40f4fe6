package http

import (
	"net/http"
	"net/url"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Binding is the JSON view of every entry registered for one service.
type Binding struct {
	Service    string                   `json:"service"`
	Count      int                      `json:"count"`
	Resolvable bool                     `json:"resolvable"`
	Entries    []container.Registration `json:"entries"`
}

// Inspector serves read-only views of a container's registrations.
//
//	r.Prefix("/container", inspector.Routes)
type Inspector struct {
	c *container.Container
}

// NewInspector creates an Inspector for c.
func NewInspector(c *container.Container) *Inspector {
	return &Inspector{c: c}
}

// Routes mounts the inspection endpoints on r.
func (in *Inspector) Routes(r *routing.Router) {
	r.Get("/bindings", in.List)
	r.Get("/bindings/{service}", in.Show)
}

// List sends every registration in registration order.
func (in *Inspector) List(w http.ResponseWriter, _ *http.Request) {
	NewResponse(w).Success(in.c.Registrations())
}

// Show sends the entries registered under one service name, as rendered by
// container.TypeKey.
func (in *Inspector) Show(w http.ResponseWriter, r *http.Request) {
	res := NewResponse(w)
	name, err := url.PathUnescape(routing.Param(r, "service"))
	if err != nil {
		res.Error(http.StatusBadRequest, "malformed service name")
		return
	}

	b := Binding{Service: name}
	for _, reg := range in.c.Registrations() {
		if reg.Service != name {
			continue
		}
		b.Entries = append(b.Entries, reg)
		if !b.Resolvable {
			b.Resolvable = in.c.CanResolve(reg.Identity)
		}
	}
	if len(b.Entries) == 0 {
		res.NotFound("No bindings for [" + name + "].")
		return
	}
	b.Count = len(b.Entries)
	res.Success(b)
}
