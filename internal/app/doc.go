// Package app wires ricecast together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, RICECAST_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create the session store and the services
//	4. Set up handlers and middleware on a chi router
//	5. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests are drained within
// Server.ShutdownTimeout, the session sweeper stops and the telemetry
// providers are flushed. Initialization errors are returned to the caller;
// the package never calls os.Exit.
package app
