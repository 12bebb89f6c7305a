// Package scanner discovers the YAML files of a project. It applies include
// and exclude globs, .gitignore rules and sensitive file patterns, and streams
// matches in lexical walk order.
package scanner

import (
	"time"
)

// FileInfo contains metadata about a discovered file.
type FileInfo struct {
	Path    string    // Relative path to project root, slash separated
	AbsPath string    // Absolute path
	Size    int64     // File size in bytes
	ModTime time.Time // Last modification time
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// RootDir is the project root directory to scan.
	RootDir string

	// IncludePatterns are doublestar globs a file must match
	// (empty = DefaultIncludePatterns).
	IncludePatterns []string

	// ExcludePatterns are doublestar globs for files and directories to skip.
	ExcludePatterns []string

	// RespectGitignore enables .gitignore parsing.
	RespectGitignore bool

	// MaxFileSize is the maximum file size in bytes (0 = DefaultMaxFileSize).
	// Larger files are reported with an error instead of being dropped.
	MaxFileSize int64

	// MaxFiles caps how many files one scan yields (0 = unlimited).
	MaxFiles int

	// FollowSymlinks includes symlinked files (default: false).
	// Symlinked directories are never descended into.
	FollowSymlinks bool
}

// ScanResult is returned from the scanner channel. A result with both File
// and Error set is a file that was found but must be skipped.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// DefaultMaxFileSize is the default maximum file size (5MB).
const DefaultMaxFileSize = 5 * 1024 * 1024

// DefaultIncludePatterns match YAML files at any depth.
var DefaultIncludePatterns = []string{"**/*.yaml", "**/*.yml"}

// Default directories to exclude.
var defaultExcludeDirs = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/vendor/**",
	"**/dist/**",
	"**/build/**",
	"**/.ssh/**",
}

// Default files to exclude.
var defaultExcludeFiles = []string{
	"**/pnpm-lock.yaml",
	"**/.yarnrc.yml",
}

// Sensitive file patterns that are never indexed, matched against the base
// name. Values from these files must not surface in a picker.
var sensitiveFilePatterns = []string{
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*credentials*",
	"*secrets*",
	"*password*",
	"id_rsa",
	"id_ed25519",
}
