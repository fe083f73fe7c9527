// Package server exposes deep-link resolution over HTTP.
//
// Endpoints:
//
//	GET /resolve?url=...   resolve one link, JSON ResolveResponse
//	GET /patterns          compiled link shapes per linked account
//	GET /ws                WebSocket; each text frame is a link, each reply a ResolveResponse
//	GET /healthz           liveness
//	GET /metrics           Prometheus metrics (Config.MetricsPath)
//
// The router is chi. Mount Handler() inside an existing chi router to share
// its middleware stack:
//
//	r := chi.NewRouter()
//	r.Mount("/links", server.New(svc, nil).Handler())
//
// A link that matches no account is not an error: the response simply
// carries an empty route list.
package server
