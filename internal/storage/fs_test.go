package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/thermo/internal/checksum"
)

func tempStore(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestNewFS_CreatesRoot(t *testing.T) {
	s := tempStore(t)
	info, err := os.Stat(s.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
}

func TestNewFS_RejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(file); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestWriteAndRead(t *testing.T) {
	s := tempStore(t)
	content := []byte("equation,delta_g\n")
	if err := s.Write("delta_g.csv", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("delta_g.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteReplaces(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("a.csv", []byte("first"))
	if err := s.Write("a.csv", []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Read("a.csv")
	if string(got) != "second" {
		t.Errorf("content = %q", got)
	}
	entries, _ := os.ReadDir(s.Root())
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempStore(t)
	if err := s.Write("runs/2026/spont.csv", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got, err := s.Read("runs/2026/spont.csv"); err != nil || string(got) != "deep" {
		t.Errorf("Read = %q, %v", got, err)
	}
}

func TestList(t *testing.T) {
	s := tempStore(t)
	_ = s.Write("b.csv", []byte("b"))
	_ = s.Write("a.csv", []byte("a"))
	_ = s.Write("notes.txt", []byte("n"))

	list, err := s.List(".csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Path != "a.csv" || list[1].Path != "b.csv" {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Checksum != checksum.Sum([]byte("a")) || list[0].Size != 1 {
		t.Errorf("artifact = %+v", list[0])
	}

	all, _ := s.List("")
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestSafePath(t *testing.T) {
	s := tempStore(t)
	for _, bad := range []string{"", "../escape.csv", "a/../../escape.csv", "/etc/passwd", "."} {
		if err := s.Write(bad, []byte("x")); err == nil {
			t.Errorf("Write(%q) should fail", bad)
		}
	}
}
