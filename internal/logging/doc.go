// Package logging provides opt-in file-based logging with rotation for yamlpick.
// When the --debug flag is set, structured JSON logs are written to
// ~/.yamlpick/logs/ and can be read back with `yamlpick logs`.
//
// Without --debug only warnings and errors reach stderr. The MCP server and
// the editor bridge own stdout and stderr, so they log to the file only.
package logging
