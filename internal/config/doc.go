// Package config handles configuration loading for ledgerview.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LEDGERVIEW_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. ~/.config/ledgerview/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  token_secret: "${LEDGERVIEW_TOKEN_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
// Database:
//
//	database:
//	  path: "/var/lib/ledgerview/ledgerview.db"
//
// Authentication:
//
//	auth:
//	  token_secret: "${LEDGERVIEW_TOKEN_SECRET}"  # >= 32 bytes, enables the JSON API
//	  session_duration: "168h"
//
// View cache:
//
//	cache:
//	  ttl: "5m"
//	  max_entries: 256
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
//   - Database path presence
//   - Token secret minimum length (32 bytes) when set
//   - Duration format validity
//   - Logging level and format values
package config
