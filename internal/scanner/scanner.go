// Package scanner resolves the file and directory arguments a corpus
// command is given into a concrete, deduplicated list of CoNLL-U files:
// glob expansion, gitignore-aware directory walking, and extension
// filtering, so the core treebank package only ever sees literal paths
// (§6 "glue is out of scope, referenced only through interfaces").
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// defaultExtensions are the suffixes recognized as CoNLL-U corpus files
// when no explicit include pattern narrows the search.
var defaultExtensions = []string{".conllu", ".conllu.gz", ".conll", ".conll.gz"}

// Scanner resolves targets (files, directories, or doublestar globs) into
// corpus file paths.
type Scanner struct {
	maxBytes       int64
	followSymlinks bool
	extensions     []string
	includeGlobs   []string
	excludeGlobs   []string
	noGitignore    bool
	gitignore      *ignore.GitIgnore
}

// Config holds scanner configuration options.
type Config struct {
	MaxBytes       int64
	FollowSymlinks bool
	Extensions     []string
	IncludeGlobs   []string
	ExcludeGlobs   []string
	NoGitignore    bool
}

// New creates a new scanner with the given configuration.
func New(cfg Config) *Scanner {
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	s := &Scanner{
		maxBytes:       cfg.MaxBytes,
		followSymlinks: cfg.FollowSymlinks,
		extensions:     exts,
		includeGlobs:   cfg.IncludeGlobs,
		excludeGlobs:   cfg.ExcludeGlobs,
		noGitignore:    cfg.NoGitignore,
	}

	if !cfg.NoGitignore {
		s.loadGitignore()
	}

	return s
}

// loadGitignore loads .gitignore patterns from the current directory and
// its ancestors, closer files taking precedence.
func (s *Scanner) loadGitignore() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	var gitignoreFiles []string
	dir := cwd
	for {
		gitignorePath := filepath.Join(dir, ".gitignore")
		if _, err := os.Stat(gitignorePath); err == nil {
			gitignoreFiles = append(gitignoreFiles, gitignorePath)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if len(gitignoreFiles) == 0 {
		return
	}

	slices.Reverse(gitignoreFiles)
	if len(gitignoreFiles) == 1 {
		if gi, err := ignore.CompileIgnoreFile(gitignoreFiles[0]); err == nil {
			s.gitignore = gi
		}
		return
	}
	var lines []string
	for _, path := range gitignoreFiles[1:] {
		if data, err := os.ReadFile(path); err == nil {
			lines = append(lines, strings.Split(string(data), "\n")...)
		}
	}
	if gi, err := ignore.CompileIgnoreFileAndLines(gitignoreFiles[0], lines...); err == nil {
		s.gitignore = gi
	}
}

// Resolve expands targets (paths, directories, or doublestar glob
// patterns such as "corpus/**/*.conllu") into a deduplicated list of
// corpus file paths. An empty targets list defaults to the current
// working directory.
func (s *Scanner) Resolve(ctx context.Context, targets []string) ([]string, error) {
	if len(targets) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("scanner: getting current directory: %w", err)
		}
		targets = []string{cwd}
	}

	var all []string
	for _, target := range targets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		files, err := s.resolveTarget(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("scanner: resolving %s: %w", target, err)
		}
		all = append(all, files...)
	}
	return dedupe(all), nil
}

func (s *Scanner) resolveTarget(ctx context.Context, target string) ([]string, error) {
	if isGlobPattern(target) {
		return s.resolveGlob(target)
	}

	info, err := os.Lstat(target)
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", target, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !s.followSymlinks {
			return nil, nil
		}
		resolved, err := filepath.EvalSymlinks(target)
		if err != nil {
			return nil, fmt.Errorf("resolving symlink %s: %w", target, err)
		}
		return s.resolveTarget(ctx, resolved)
	}

	if info.Mode().IsRegular() {
		if s.shouldProcess(target, info) {
			return []string{target}, nil
		}
		return nil, nil
	}

	if info.IsDir() {
		return s.walkDirectory(ctx, target)
	}
	return nil, nil
}

// isGlobPattern reports whether target contains doublestar glob
// metacharacters rather than naming a literal file or directory.
func isGlobPattern(target string) bool {
	return strings.ContainsAny(target, "*?[{")
}

func (s *Scanner) resolveGlob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob %s: %w", pattern, err)
	}

	var out []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if s.shouldProcess(m, info) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Scanner) walkDirectory(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fullPath := filepath.Join(dir, path)
		if d.IsDir() {
			if s.shouldSkipDirectory(path) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", fullPath, err)
			}
			if s.shouldProcess(fullPath, info) {
				files = append(files, fullPath)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

func (s *Scanner) shouldProcess(path string, info os.FileInfo) bool {
	if s.gitignore != nil {
		if relPath, err := filepath.Rel(".", path); err == nil && s.gitignore.MatchesPath(relPath) {
			return false
		}
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return false
	}

	basename := filepath.Base(path)
	if len(s.includeGlobs) > 0 {
		if !matchesAny(s.includeGlobs, basename) {
			return false
		}
	} else if !hasAnyExtension(basename, s.extensions) {
		return false
	}

	if matchesAny(s.excludeGlobs, basename) {
		return false
	}
	return true
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if match, _ := filepath.Match(pattern, name); match {
			return true
		}
	}
	return false
}

func hasAnyExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (s *Scanner) shouldSkipDirectory(path string) bool {
	if s.gitignore != nil {
		if relPath, err := filepath.Rel(".", path); err == nil && s.gitignore.MatchesPath(relPath) {
			return true
		}
	}

	dirname := filepath.Base(path)
	if slices.Contains([]string{".git", "vendor", "node_modules", "dist", "build"}, dirname) {
		return true
	}
	if strings.HasPrefix(dirname, ".") && dirname != "." {
		return true
	}
	return false
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
