// Package config loads and validates hookrelay configuration.
//
// Configuration is a YAML file with ${VAR} environment variable expansion:
//
//	server:
//	  http_addr: "0.0.0.0:3001"
//
//	database:
//	  path: "~/.local/share/hookrelay/hookrelay.db"
//
//	auth:
//	  jwt_secret: "${HOOKRELAY_JWT_SECRET}"
//	  token_ttl: "1h"
//
//	delivery:
//	  mode: "stub"   # or "http" for real outbound POSTs
//	  timeout: "10s"
//
//	logging:
//	  level: "info"  # debug, info, warn, error
//	  format: "text" # text or json
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// Duration fields accept Go duration strings. Load parses, expands, and
// validates in one step; a Config that Load returns is ready to use.
package config
