package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	pickerr "github.com/Aman-CERP/yamlpick/internal/errors"
	"github.com/Aman-CERP/yamlpick/internal/gitignore"
)

// gitignoreCacheSize is the maximum number of gitignore matchers to cache.
const gitignoreCacheSize = 1000

// Scanner discovers indexable files in a project directory.
type Scanner struct {
	// gitignoreCache holds one matcher per directory, keyed by absolute path.
	// Directories without a .gitignore cache an empty matcher.
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
}

// New creates a new Scanner instance.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitignore cache: %w", err)
	}
	return &Scanner{gitignoreCache: cache}, nil
}

// Scan discovers all indexable files in the project directory.
// It returns a channel of ScanResult that streams files in lexical order.
// The channel is closed when scanning is complete or ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, pickerr.New(pickerr.ErrCodeRootNotFound,
			fmt.Sprintf("cannot open workspace root %s", absRoot), err).
			WithDetail("path", absRoot)
	}
	if !info.IsDir() {
		return nil, pickerr.New(pickerr.ErrCodeRootNotFound,
			fmt.Sprintf("root path is not a directory: %s", absRoot), nil).
			WithDetail("path", absRoot)
	}

	for _, p := range append(append([]string{}, opts.IncludePatterns...), opts.ExcludePatterns...) {
		if !doublestar.ValidatePattern(p) {
			return nil, pickerr.ValidationError(fmt.Sprintf("invalid glob pattern %q", p), nil)
		}
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		s.scan(ctx, absRoot, opts, results)
	}()

	return results, nil
}

// Collect drains a scan channel. Files that were skipped by the scanner are
// returned alongside their errors in skipped.
func Collect(results <-chan ScanResult) (files []*FileInfo, skipped []ScanResult) {
	for r := range results {
		if r.Error != nil {
			skipped = append(skipped, r)
			continue
		}
		files = append(files, r.File)
	}
	return files, skipped
}

// scan performs the directory traversal.
func (s *Scanner) scan(ctx context.Context, absRoot string, opts *ScanOptions, results chan<- ScanResult) {
	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	emit := func(r ScanResult) error {
		select {
		case results <- r:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	found := 0
	err := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil
		}
		if relPath == "." {
			if walkErr != nil {
				return walkErr
			}
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if walkErr != nil {
			slog.Debug("skipping unreadable entry",
				slog.String("path", relPath),
				slog.String("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.shouldExcludeDir(relPath, absRoot, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !opts.FollowSymlinks {
				return nil
			}
			target, statErr := os.Stat(p)
			if statErr != nil || !target.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}

		if !Matches(relPath, opts) {
			return nil
		}
		if opts.RespectGitignore && s.isGitignored(relPath, absRoot, false) {
			return nil
		}

		info, err := os.Stat(p)
		if err != nil {
			return emit(ScanResult{
				File:  &FileInfo{Path: relPath, AbsPath: p},
				Error: pickerr.ReadError(relPath, err),
			})
		}

		file := &FileInfo{
			Path:    relPath,
			AbsPath: p,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}

		if info.Size() > maxFileSize {
			return emit(ScanResult{
				File: file,
				Error: pickerr.New(pickerr.ErrCodeFileTooLarge,
					fmt.Sprintf("%s is larger than %d bytes", relPath, maxFileSize), nil).
					WithDetail("path", relPath),
			})
		}

		if isBinaryFile(p) {
			slog.Debug("skipping binary file", slog.String("path", relPath))
			return nil
		}

		if opts.MaxFiles > 0 && found >= opts.MaxFiles {
			slog.Warn("file limit reached, remaining files are not indexed",
				slog.Int("max_files", opts.MaxFiles),
				slog.String("first_dropped", relPath))
			return filepath.SkipAll
		}
		found++

		return emit(ScanResult{File: file})
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		select {
		case results <- ScanResult{Error: pickerr.ReadError(absRoot, err)}:
		case <-ctx.Done():
		}
	}
}

// Matches reports whether a slash-separated path relative to the root is an
// indexable file under opts: it matches an include glob and no exclude, default
// or sensitive pattern. It does not consult the filesystem or .gitignore.
func Matches(relPath string, opts *ScanOptions) bool {
	if opts == nil {
		opts = &ScanOptions{}
	}
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "./")

	include := opts.IncludePatterns
	if len(include) == 0 {
		include = DefaultIncludePatterns
	}
	if !matchAny(include, relPath) {
		return false
	}

	if matchAny(defaultExcludeFiles, relPath) || matchAny(opts.ExcludePatterns, relPath) {
		return false
	}
	if excludedByDir(relPath, opts.ExcludePatterns) {
		return false
	}

	base := path.Base(relPath)
	for _, pattern := range sensitiveFilePatterns {
		if ok, _ := doublestar.Match(pattern, base); ok {
			return false
		}
	}
	return true
}

// excludedByDir reports whether any parent directory of relPath is excluded.
func excludedByDir(relPath string, custom []string) bool {
	dir := path.Dir(relPath)
	for dir != "." && dir != "/" {
		if matchAny(defaultExcludeDirs, dir) || matchAny(custom, dir) {
			return true
		}
		dir = path.Dir(dir)
	}
	return false
}

// shouldExcludeDir checks if a directory should be skipped entirely.
func (s *Scanner) shouldExcludeDir(relPath, absRoot string, opts *ScanOptions) bool {
	if matchAny(defaultExcludeDirs, relPath) || matchAny(opts.ExcludePatterns, relPath) {
		return true
	}
	return opts.RespectGitignore && s.isGitignored(relPath, absRoot, true)
}

// matchAny reports whether name matches one of the doublestar patterns.
// A "dir/**" pattern also matches "dir" itself.
func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// isBinaryFile checks if a file is binary by looking for null bytes.
func isBinaryFile(p string) bool {
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}
	return bytes.Contains(buf[:n], []byte{0})
}

// isGitignored checks the root .gitignore and every nested .gitignore
// between the root and relPath as one rule list, root first, so the last
// matching rule wins.
func (s *Scanner) isGitignored(relPath, absRoot string, isDir bool) bool {
	matchers := []*gitignore.Matcher{s.getGitignoreMatcher(absRoot, "")}

	if dir := path.Dir(relPath); dir != "." {
		currentBase := ""
		for _, part := range strings.Split(dir, "/") {
			currentBase = path.Join(currentBase, part)
			m := s.getGitignoreMatcher(filepath.Join(absRoot, filepath.FromSlash(currentBase)), currentBase)
			if m.Len() > 0 {
				matchers = append(matchers, m)
			}
		}
	}

	if len(matchers) == 1 {
		return matchers[0].Match(relPath, isDir)
	}
	return gitignore.Combine(matchers...).Match(relPath, isDir)
}

// getGitignoreMatcher gets or creates the matcher for one directory.
func (s *Scanner) getGitignoreMatcher(dir, base string) *gitignore.Matcher {
	if matcher, ok := s.gitignoreCache.Get(dir); ok {
		return matcher
	}

	matcher := gitignore.New()
	gitignorePath := filepath.Join(dir, ".gitignore")
	if err := matcher.AddFromFile(gitignorePath, base); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("failed to load gitignore",
			slog.String("path", gitignorePath),
			slog.String("error", err.Error()))
	}

	s.gitignoreCache.Add(dir, matcher)
	return matcher
}

// InvalidateGitignoreCache clears the gitignore matcher cache.
// Call this when .gitignore files change.
func (s *Scanner) InvalidateGitignoreCache() {
	s.gitignoreCache.Purge()
}
