// Package config handles configuration loading for the advisory server.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ADVISORY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/advisory/server.yaml
//  3. ~/.config/advisory/server.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${ADVISORY_JWT_SECRET}"
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8080"
//
// Database (sqlite or postgres):
//
//	database:
//	  driver: "sqlite"
//	  path: "data/advisory.db"
//	  dsn: ""   # required when driver is postgres
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${ADVISORY_JWT_SECRET}"  # required, >= 32 bytes
//	  token_ttl: "1h"
//	  token_header: "Authorization"       # or e.g. "X-Auth-Token"
//	  bcrypt_cost: 10
//	  owner_cancel: true
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - JWT secret presence and minimum length (32 bytes)
//   - Database driver is sqlite or postgres, with its required field
//   - Duration format validity
package config
