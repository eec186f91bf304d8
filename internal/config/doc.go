// Package config loads ricecast configuration.
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Built-in defaults from Default (lowest priority)
//
// Environment variables are namespaced RICECAST_<SECTION>_<FIELD>:
//
//	RICECAST_SERVER_PORT=8080
//	RICECAST_FORECAST_PRICE_FLOOR=12000
//	RICECAST_FORECAST_HORIZONS=7,14,30
//	RICECAST_UPLOAD_SESSION_TTL=30m
//
// The YAML file is taken from RICECAST_CONFIG, or the first of config.yaml and
// configs/config.yaml that exists.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
