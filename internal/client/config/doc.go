// Package config loads client runtime settings from three sources, in
// increasing precedence: built-in defaults, an optional JSON file
// (-c/-config), and command-line flags.
package config
