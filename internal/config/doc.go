// Package config loads the daemon configuration from a JSON file and applies
// defaults for anything the operator left unset. Paths are resolved relative
// to the configuration file's directory.
package config
