// Package dev provides the watch mode of the cannon CLI.
//
// The dev server polls the artifacts directory and the router definition
// file. Any change regenerates the whole batch; routers whose source
// changed are announced to WebSocket subscribers.
//
// # HTTP API
//
//	GET /routers            summaries of the generated routers
//	GET /routers/{name}     router source, ETag is the source checksum
//	GET /healthz            status of the last regeneration
//	GET /metrics            Prometheus metrics
//	GET /_cannon/events     WebSocket stream of JSON events
//
// Events look like:
//
//	{"type":"generated","router":"CoreRouter","checksum":"9f86d0..."}
//	{"type":"error","router":"CoreRouter","error":"E100: Modules not found: ..."}
//
// # Usage
//
//	server, err := dev.NewServer(ctx, dev.ServerOptions{Config: cfg})
//	if err != nil {
//	    return err
//	}
//	return server.Start(ctx)
package dev
