// Package http implements the HTTP handlers of ricecast. Handlers stay thin:
// they decode and validate requests, call the services and turn service
// errors into RFC 7807 problems through the shared error handler.
//
// # Routes
//
//	GET    /                              upload form
//	POST   /                              form submit, renders tables and chart
//	POST   /api/datasets                  cache an upload
//	GET    /api/datasets/{id}             describe a cached upload
//	DELETE /api/datasets/{id}             discard a cached upload
//	POST   /api/datasets/{id}/forecast    run the pipeline (JSON body)
//	GET    /api/datasets/{id}/chart       chart as png or svg
//	GET    /api/datasets/{id}/export      report as csv or xlsx
//	POST   /api/forecast                  one-shot upload and forecast
//	GET    /api/health[/ready|/live]      health reports
//	GET    /api/version                   build information
package http
