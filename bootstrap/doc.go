// Package bootstrap runs the productfeed binaries: it validates the typed
// config, initializes the logger, starts registered components in order and
// stops them again on shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(redisComponent)
//	app.RegisterComponent(serverComponent)
//	err = app.Run(ctx)
//
// Run blocks until SIGINT/SIGTERM; RunTask runs a finite task instead.
package bootstrap
