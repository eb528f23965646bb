package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path   string
		errMsg string
	}{
		{"Repo/Names.json", ""},
		{"file.json", ""},
		{"a/b/c.json", ""},
		{"", "empty"},
		{"/abs/file.json", "absolute"},
		{"C:/file.json", "absolute"},
		{"a/../b.json", "contains .."},
		{"../b.json", "contains .."},
		{"a//b.json", "not clean"},
		{"./a.json", "not clean"},
		{"a/b/", "not clean"},
		{"a..b.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("ValidatePath(%q) unexpected error: %v", tt.path, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidPath) || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidatePath(%q) = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestFilesystemSink(t *testing.T) {
	root := t.TempDir()
	s := NewFilesystemSink(root)
	ctx := context.Background()

	if err := s.WriteFile(ctx, "Repo/Names.json", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := s.WriteFile(ctx, "Repo/Names.json", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(root, "Repo", "Names.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("content = %s", got)
	}

	info, err := os.Stat(filepath.Join(root, "Repo", "Names.json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Join(root, "Repo"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %v", entries)
	}
}

func TestFilesystemSink_NoOverwrite(t *testing.T) {
	root := t.TempDir()
	s := &FilesystemSink{Root: root}
	ctx := context.Background()

	if err := s.WriteFile(ctx, "a.json", []byte("1")); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	err := s.WriteFile(ctx, "a.json", []byte("2"))
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(root, "a.json"))
	if string(got) != "1" {
		t.Errorf("content = %s, want original", got)
	}
	entries, _ := os.ReadDir(root)
	if len(entries) != 1 {
		t.Errorf("expected no temp files left behind, got %v", entries)
	}
}

func TestFilesystemSink_Errors(t *testing.T) {
	s := NewFilesystemSink(t.TempDir())

	if err := s.WriteFile(context.Background(), "../escape.json", nil); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath for traversal, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.WriteFile(ctx, "a.json", nil); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMemorySink(t *testing.T) {
	s := NewMemorySink()
	ctx := context.Background()

	content := []byte("report")
	if err := s.WriteFile(ctx, "Repo/Names.json", content); err != nil {
		t.Fatal(err)
	}
	content[0] = 'X'
	if got := string(s.Get("Repo/Names.json")); got != "report" {
		t.Errorf("Get = %q, want stored copy", got)
	}
	if s.Get("missing.json") != nil {
		t.Error("Get of missing path should be nil")
	}
	if err := s.WriteFile(ctx, "/abs.json", nil); err == nil {
		t.Error("expected error for absolute path")
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.WriteFile(ctx, fmt.Sprintf("f%d.json", i), []byte("x"))
		}(i)
	}
	wg.Wait()
	if n := len(s.Files()); n != 21 {
		t.Errorf("got %d files, want 21", n)
	}
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"Repo.Names", "Repo/Names.json"},
		{"testdata.NewRepo", "testdata/NewRepo.json"},
		{"Names", "Names.json"},
		{"List`1.Item", "List_1/Item.json"},
		{"a..b", "a/_/b.json"},
	}
	for _, tt := range tests {
		got := ReportPath(tt.key)
		if got != tt.want {
			t.Errorf("ReportPath(%q) = %q, want %q", tt.key, got, tt.want)
		}
		if err := ValidatePath(got); err != nil {
			t.Errorf("ReportPath(%q) produced invalid path: %v", tt.key, err)
		}
	}
}
