// Package input discovers team definition files on disk.
package input

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SupportedExtensions lists team file extensions
var SupportedExtensions = []string{
	".yaml", // YAML team files
	".yml",  // YAML team files
	".toml", // TOML team files
	".hcl",  // HCL team files
}

// ConfigDir is the project directory searched even though it is hidden.
const ConfigDir = ".dynoteam"

// skipDirs are never scanned.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// Input represents discovered team files
type Input struct {
	// IsDirectory indicates if input was a directory
	IsDirectory bool
	// Path is the original input path (file or directory)
	Path string
	// Files contains all discovered team files (absolute paths)
	Files []string
	// PrimaryFile is the team file to run (team.* first, then the first file)
	PrimaryFile string
}

// Discover scans the input path and returns discovered team files
// If path is a file, returns that single file
// If path is a directory, scans for supported file types
func Discover(path string) (*Input, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path not found: %w", err)
	}

	if !info.IsDir() {
		if !IsSupported(absPath) {
			return nil, fmt.Errorf("unsupported team file %s (supported: %v)", absPath, SupportedExtensions)
		}
		return &Input{
			IsDirectory: false,
			Path:        absPath,
			Files:       []string{absPath},
			PrimaryFile: absPath,
		}, nil
	}

	// Directory input - scan for files
	files, err := scanDirectory(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no team files found in %s (supported: %v)", absPath, SupportedExtensions)
	}

	return &Input{
		IsDirectory: true,
		Path:        absPath,
		Files:       files,
		PrimaryFile: findPrimaryFile(files),
	}, nil
}

// IsSupported reports whether path has a team file extension.
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// scanDirectory recursively scans a directory for supported files
func scanDirectory(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip files we can't access
		}

		if d.IsDir() {
			name := d.Name()
			if path != dir && ((strings.HasPrefix(name, ".") && name != ConfigDir) || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

// findPrimaryFile determines the primary team file
// Priority: shallowest team.* file > first file
func findPrimaryFile(files []string) string {
	best := ""
	bestDepth := -1
	for _, f := range files {
		name := strings.ToLower(filepath.Base(f))
		if strings.TrimSuffix(name, filepath.Ext(name)) != "team" {
			continue
		}
		depth := strings.Count(filepath.ToSlash(f), "/")
		if bestDepth < 0 || depth < bestDepth {
			best, bestDepth = f, depth
		}
	}
	if best != "" {
		return best
	}

	// Fall back to first file
	if len(files) > 0 {
		return files[0]
	}

	return ""
}

// Summarize describes a set of team files, counted by extension.
func Summarize(files []string) string {
	if len(files) == 1 {
		return "1 team file: " + filepath.Base(files[0])
	}

	byExt := make(map[string]int)
	for _, f := range files {
		byExt[strings.ToLower(filepath.Ext(f))]++
	}
	exts := slices.Sorted(maps.Keys(byExt))
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%d %s", byExt[ext], ext))
	}
	return fmt.Sprintf("%d team files: %s", len(files), strings.Join(parts, ", "))
}
