// Package config loads, defaults and validates application settings from
// environment variables, an optional config file and an optional .env file.
// The resulting Config is built once at startup and treated as immutable.
package config
