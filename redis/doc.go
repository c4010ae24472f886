// Package redis provides a go-redis client with logging and component
// lifecycle support, and a TextStore that backs the session deletion store.
//
//	comp := redis.NewComponent(cfg, log)
//	registry.Register(comp)
//	...
//	kv := redis.NewTextStore(comp.Client(), cfg.KeyPrefix, cfg.TTL)
//	store := exclusion.NewStore(kv, sessionID, "", log)
package redis
