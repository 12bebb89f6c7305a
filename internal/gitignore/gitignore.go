package gitignore

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher holds parsed gitignore rules and provides thread-safe matching.
type Matcher struct {
	mu    sync.RWMutex
	rules []rule
}

// rule is a single parsed gitignore line.
type rule struct {
	glob     string // doublestar pattern, without the !, leading / or trailing /
	negation bool   // starts with !
	dirOnly  bool   // ends with /
	anchored bool   // leading / or a slash in the middle: match the full relative path
	base     string // directory of the .gitignore that declared it, "" for root
}

// New creates a new empty Matcher.
func New() *Matcher {
	return &Matcher{}
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}

// AddPattern adds a pattern declared by the root .gitignore.
func (m *Matcher) AddPattern(pattern string) {
	m.AddPatternWithBase(pattern, "")
}

// AddPatternWithBase adds a pattern that only applies under base (a
// slash-separated directory relative to the project root).
// Blank lines, comments and invalid globs are ignored.
func (m *Matcher) AddPatternWithBase(line, base string) {
	r, ok := parseRule(line)
	if !ok {
		return
	}
	r.base = strings.Trim(filepath.ToSlash(base), "/")

	m.mu.Lock()
	m.rules = append(m.rules, r)
	m.mu.Unlock()
}

// Combine returns a matcher holding the rules of ms in order. Pass the root
// matcher first and deeper ones after it so that, as in git, a rule from a
// deeper .gitignore overrides the ones above it.
func Combine(ms ...*Matcher) *Matcher {
	out := New()
	for _, m := range ms {
		if m == nil {
			continue
		}
		m.mu.RLock()
		out.rules = append(out.rules, m.rules...)
		m.mu.RUnlock()
	}
	return out
}

// AddFromFile reads patterns from a gitignore file.
func (m *Matcher) AddFromFile(file, base string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open gitignore file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m.AddPatternWithBase(scanner.Text(), base)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read gitignore file: %w", err)
	}
	return nil
}

// Match reports whether the slash- or OS-separated relative path is ignored.
// A path inside an ignored directory is ignored regardless of later
// negations, as in git.
func (m *Matcher) Match(p string, isDir bool) bool {
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "" || p == "." {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	parts := strings.Split(p, "/")
	for i := 1; i < len(parts); i++ {
		if m.ignored(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}
	return m.ignored(p, isDir)
}

// ignored applies every rule in order; the last matching rule decides.
func (m *Matcher) ignored(p string, isDir bool) bool {
	result := false
	for _, r := range m.rules {
		if r.matches(p, isDir) {
			result = !r.negation
		}
	}
	return result
}

func (r rule) matches(p string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}

	if r.base != "" {
		if !strings.HasPrefix(p, r.base+"/") {
			return false
		}
		p = strings.TrimPrefix(p, r.base+"/")
	}

	target := p
	if !r.anchored {
		target = path.Base(p)
	}

	ok, err := doublestar.Match(r.glob, target)
	return err == nil && ok
}

// parseRule turns one .gitignore line into a rule.
func parseRule(line string) (rule, bool) {
	line = strings.TrimRight(line, "\r")

	// Trailing spaces are dropped unless escaped with a backslash.
	escapedSpace := strings.HasSuffix(line, `\ `)
	line = strings.TrimRight(line, " \t")
	if escapedSpace {
		line = strings.TrimSuffix(line, `\`) + " "
	}

	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	switch {
	case strings.HasPrefix(line, `\#`), strings.HasPrefix(line, `\!`):
		line = line[1:]
	case strings.HasPrefix(line, "!"):
		r.negation = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.Contains(line, "/") {
		r.anchored = true
	}
	if line == "" {
		return rule{}, false
	}

	// Braces are literal in gitignore but alternation in doublestar.
	line = strings.NewReplacer("{", `\{`, "}", `\}`).Replace(line)
	if !doublestar.ValidatePattern(line) {
		return rule{}, false
	}

	r.glob = line
	return r, true
}
