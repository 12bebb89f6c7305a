// Package gitignore matches paths against .gitignore rules.
//
// Supported syntax follows https://git-scm.com/docs/gitignore:
//   - Basename patterns (*.log, secrets.yaml) match at any depth
//   - Patterns with a slash (/build, config/*.yaml, **/tmp) match the full path
//   - Directory-only patterns (build/)
//   - Negation (!keep.yaml), last matching rule wins
//   - *, ?, [...] and ** wildcards, via doublestar
//   - Nested .gitignore files scoped to their directory
//
// Usage:
//
//	m := gitignore.New()
//	_ = m.AddFromFile("/repo/.gitignore", "")
//	_ = m.AddFromFile("/repo/locales/.gitignore", "locales")
//
//	if m.Match("locales/tmp/en.yaml", false) {
//	    // skip it
//	}
package gitignore
