package blob

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenMemoryDriver(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverMemory {
		t.Fatalf("driver = %s", s.Driver())
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")
	s, err := Open(context.Background(), Options{FSRoot: root})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", s.Driver())
	}
	if _, err := s.Put(context.Background(), "k", strings.NewReader("v"), PutOptions{}); err != nil {
		t.Fatalf("put through facade: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "tape"}); err == nil {
		t.Fatal("unknown driver accepted")
	}
}
