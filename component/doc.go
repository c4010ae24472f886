// Package component manages the lifecycle of long-lived infrastructure
// (HTTP server, Redis connection, SQLite database).
//
// Components start in registration order and stop in reverse order:
//
//	reg := component.NewRegistry(log)
//	_ = reg.Register(redisComponent)
//	_ = reg.Register(httpServer)
//	if err := reg.StartAll(ctx); err != nil { ... }
//	defer reg.StopAll(context.Background())
package component
