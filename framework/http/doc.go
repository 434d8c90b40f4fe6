// Package http holds JSON response helpers and the container inspection
// endpoints served by the application.
//
//	inspector := gohttp.NewInspector(app.Container)
//	router.Prefix("/container", inspector.Routes)
//
//	GET /container/bindings             every registration
//	GET /container/bindings/{service}   entries for one service
//
// {service} is the container.TypeKey of the identity, path-escaped, so
// *github.com/acme/app/users.Service becomes
// %2Agithub.com%2Facme%2Fapp%2Fusers.Service.
package http
