// Package config defines the settings shared by focus-bridge and
// focus-alarmctl and provides helpers to load, validate and save them in YAML.
//
// Validate fills defaults for every optional field, so a file that only sets
// server_addr is a complete configuration.
package config
