package object

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestHashObjectEnvelope(t *testing.T) {
	data := []byte("hello")
	h1 := HashObject(TypeBlob, data)
	if !h1.Valid() {
		t.Fatalf("HashObject produced invalid hash %q", h1)
	}
	if h2 := HashObject(TypeBlob, data); h1 != h2 {
		t.Error("HashObject not deterministic")
	}
	if h3 := HashObject(TypeTag, data); h1 == h3 {
		t.Error("Different types should produce different hashes")
	}
}

func TestHashValid(t *testing.T) {
	tests := []struct {
		in   Hash
		want bool
	}{
		{HashObject(TypeBlob, nil), true},
		{"", false},
		{"abc", false},
		{Hash(strings.Repeat("A", 64)), false},
		{Hash(strings.Repeat("g", 64)), false},
	}
	for _, tc := range tests {
		if got := tc.in.Valid(); got != tc.want {
			t.Errorf("Valid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestStoreWriteRead(t *testing.T) {
	s := tempStore(t)
	data := []byte("hello world")
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	gotType, gotData, err := s.Read(h)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotType != TypeBlob {
		t.Errorf("Type: got %q, want %q", gotType, TypeBlob)
	}
	if !bytes.Equal(gotData, data) {
		t.Errorf("Data: got %q, want %q", gotData, data)
	}
	if !s.Has(h) {
		t.Error("Has should report written object")
	}
}

func TestStoreFanoutLayout(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	h, err := s.Write(TypeBlob, []byte("fanout"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	path := filepath.Join(dir, "objects", string(h[:2]), string(h[2:]))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("object not at fan-out path %s: %v", path, err)
	}
}

func TestStoreReadMissing(t *testing.T) {
	s := tempStore(t)
	if _, _, err := s.Read(HashObject(TypeBlob, []byte("absent"))); err == nil {
		t.Fatal("Read of missing object should fail")
	}
	if _, _, err := s.Read("../../etc/passwd"); err == nil {
		t.Fatal("Read of malformed hash should fail")
	}
}

func TestStoreWriteReadCommit(t *testing.T) {
	s := tempStore(t)
	treeHash, err := s.WriteTree(&TreeObj{})
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	c := &CommitObj{TreeHash: treeHash, Author: "alice", Timestamp: 1700000000, Message: "initial\n"}
	h, err := s.WriteCommit(c)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	got, err := s.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if got.TreeHash != treeHash || got.Author != "alice" || got.Message != "initial\n" {
		t.Fatalf("ReadCommit = %+v", got)
	}
}

func TestStoreReadTagTypeMismatch(t *testing.T) {
	s := tempStore(t)
	h, err := s.WriteBlob(&Blob{Data: []byte("not a tag")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	if _, err := s.ReadTag(h); err == nil || !strings.Contains(err.Error(), "type mismatch") {
		t.Fatalf("ReadTag on blob: err = %v, want type mismatch", err)
	}
}
