package blob

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := s.Save([]byte("fake png bytes"), "flyer.PNG")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url=%q", url)
	}

	// the file landed on disk under the generated name
	name := strings.TrimPrefix(url, "/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake png bytes" {
		t.Fatalf("content mismatch")
	}

	if err := s.Delete(url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Fatalf("file survived delete")
	}
}

func TestLocalStore_UniqueNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	u1, _ := s.Save([]byte("a"), "same.jpg")
	u2, _ := s.Save([]byte("b"), "same.jpg")
	if u1 == u2 {
		t.Fatalf("same URL for two uploads: %q", u1)
	}
}

func TestLocalStore_RejectsUnknownExtensions(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := s.Save([]byte("#!/bin/sh"), "payload.sh"); err == nil {
		t.Fatalf("executable upload accepted")
	}
}

func TestLocalStore_DeleteForeignURLIsNoop(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Delete("https://elsewhere.example/x.png"); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
}
