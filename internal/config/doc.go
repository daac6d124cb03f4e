// Package config defines the optional settings file shared by the mod-mender
// commands and provides helpers to load, validate and save it in YAML format.
//
// Settings cover the Modrinth endpoint, the per-request timeout, the
// User-Agent header and the log level.
package config
