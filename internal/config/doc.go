// Package config loads and validates monitor configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Loading is
// split into Load (parse), LoadWithDefaults (parse + defaults) and
// LoadAndValidate (parse + defaults + validation) so tests can exercise
// each stage.
package config
