package input

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("name: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "team.yaml")
	touch(t, filePath)

	input, err := Discover(filePath)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if input.IsDirectory {
		t.Error("Expected IsDirectory = false for single file")
	}
	if len(input.Files) != 1 {
		t.Errorf("Expected 1 file, got %d", len(input.Files))
	}
	if input.PrimaryFile != input.Files[0] {
		t.Error("PrimaryFile should equal the single file")
	}
}

func TestDiscoverSingleUnsupportedFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "team.json")
	touch(t, filePath)

	if _, err := Discover(filePath); err == nil {
		t.Error("Discover() should reject unsupported files")
	}
}

func TestDiscoverDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{
		"research.yaml",
		"pipeline.yml",
		"ops.toml",
		"infra.hcl",
		"README.md",    // unsupported extension
		".hidden.yaml", // hidden file
	} {
		touch(t, filepath.Join(tmpDir, name))
	}

	input, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if !input.IsDirectory {
		t.Error("Expected IsDirectory = true")
	}

	// Should find 4 supported files (not .md, not hidden)
	if len(input.Files) != 4 {
		t.Errorf("Expected 4 files, got %d: %v", len(input.Files), input.Files)
	}

	for _, f := range input.Files {
		if strings.HasSuffix(f, ".md") {
			t.Errorf("Should not include .md file: %s", f)
		}
		if strings.HasPrefix(filepath.Base(f), ".") {
			t.Errorf("Should not include hidden file: %s", f)
		}
	}
}

func TestDiscoverEmptyDirectory(t *testing.T) {
	_, err := Discover(t.TempDir())
	if err == nil {
		t.Fatal("Discover() should return error for empty directory")
	}
	if !strings.Contains(err.Error(), "no team files") {
		t.Errorf("Expected 'no team files' error, got: %v", err)
	}
}

func TestDiscoverNonexistentPath(t *testing.T) {
	_, err := Discover("/nonexistent/path")
	if err == nil {
		t.Error("Discover() should return error for nonexistent path")
	}
}

func TestDiscoverSkipsHiddenDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	touch(t, filepath.Join(tmpDir, ".git", "config.yaml"))
	touch(t, filepath.Join(tmpDir, "node_modules", "pkg", "team.yaml"))
	touch(t, filepath.Join(tmpDir, ConfigDir, "team.yaml"))
	touch(t, filepath.Join(tmpDir, "visible.yaml"))

	input, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	// .dynoteam is scanned, .git and node_modules are not
	if len(input.Files) != 2 {
		t.Errorf("Expected 2 files, got %d: %v", len(input.Files), input.Files)
	}
	if filepath.Base(input.PrimaryFile) != "team.yaml" {
		t.Errorf("PrimaryFile = %s, want the .dynoteam team file", input.PrimaryFile)
	}
}

func TestFindPrimaryFile(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{
			name:  "team file wins",
			files: []string{"/p/a.yaml", "/p/team.toml", "/p/z.hcl"},
			want:  "/p/team.toml",
		},
		{
			name:  "shallowest team file wins",
			files: []string{"/p/a/b/team.yaml", "/p/a/team.hcl"},
			want:  "/p/a/team.hcl",
		},
		{
			name:  "case insensitive name",
			files: []string{"/p/other.yaml", "/p/Team.YAML"},
			want:  "/p/Team.YAML",
		},
		{
			name:  "first file fallback",
			files: []string{"/p/ops.yaml", "/p/research.yaml"},
			want:  "/p/ops.yaml",
		},
		{
			name:  "empty",
			files: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findPrimaryFile(tt.files); got != tt.want {
				t.Errorf("findPrimaryFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize([]string{"/x/team.hcl"}); got != "1 team file: team.hcl" {
		t.Errorf("Summarize(single) = %q", got)
	}
	got := Summarize([]string{"a.yaml", "b.YML", "c.yaml", "d.toml"})
	if got != "4 team files: 1 .toml, 2 .yaml, 1 .yml" {
		t.Errorf("Summarize(many) = %q", got)
	}
}

func TestDiscoverFilesAreSorted(t *testing.T) {
	tmpDir := t.TempDir()
	for _, f := range []string{"zebra.yaml", "alpha.yaml", "middle.yaml"} {
		touch(t, filepath.Join(tmpDir, f))
	}

	input, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	for i := 1; i < len(input.Files); i++ {
		if input.Files[i] < input.Files[i-1] {
			t.Errorf("Files not sorted: %v", input.Files)
			break
		}
	}
}

func TestDiscoverCaseInsensitiveExtensions(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "a.YAML"))
	touch(t, filepath.Join(tmpDir, "b.Toml"))

	input, err := Discover(tmpDir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	if len(input.Files) != 2 {
		t.Errorf("Expected 2 files with uppercase extensions, got %d", len(input.Files))
	}
}
