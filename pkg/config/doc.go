// Package config loads fileroutes configuration.
//
// Values are layered with koanf, later layers overriding earlier ones:
// embedded defaults, the user config file under the XDG config directory,
// the project's fileroutes.toml and finally FILEROUTES_* environment
// variables.
package config
