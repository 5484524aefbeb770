// Package aviators holds assets embedded into the binary.
package aviators

import "embed"

// Migrations contains the goose SQL migrations of the service.
//
//go:embed migrations/*.sql
var Migrations embed.FS
