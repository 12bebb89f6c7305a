// Package configs embeds the configuration templates written by
// `yamlpick config init`.
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults (internal/config NewConfig())
//  2. User config (~/.config/yamlpick/config.yaml)
//  3. Project config (.yamlpick.yaml)
//  4. Environment variables (YAMLPICK_*)
package configs

import _ "embed"

// UserConfigTemplate is written to the user config path by `yamlpick config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written to .yamlpick.yaml by `yamlpick config init --project`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
