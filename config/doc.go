// Package config loads titlelens configuration from YAML.
//
// Missing keys keep their defaults, so a config file only needs the settings
// it changes:
//
//	min_query_length: 3
//	lookup:
//	  kind: http
//	  endpoint: http://localhost:8080
//	  request_timeout: 2s
//
// Load validates the result; invalid configurations wrap ErrInvalidConfig.
package config
