package cas

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

var sampleDoc = []byte("0 HEAD\n1 GEDC\n0 TRLR\n")

func TestSum(t *testing.T) {
	sum := Sum(sampleDoc)
	if sum.SHA256 != Hash(sampleDoc) || sum.BLAKE3 != Blake3Hash(sampleDoc) {
		t.Errorf("Sum() = %+v, disagrees with Hash/Blake3Hash", sum)
	}
	if len(sum.SHA256) != 64 || len(sum.BLAKE3) != 64 {
		t.Errorf("digest lengths = %d, %d; want 64", len(sum.SHA256), len(sum.BLAKE3))
	}
	if sum.SHA256 == sum.BLAKE3 {
		t.Error("SHA-256 and BLAKE3 digests should differ")
	}

	// Known SHA-256 of the empty input.
	if got := Hash(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("Hash(nil) = %s", got)
	}
}

func TestStore_PutGet(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	sum, err := store.Put(sampleDoc)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if *sum != Sum(sampleDoc) {
		t.Errorf("Put() = %+v, want %+v", sum, Sum(sampleDoc))
	}

	got, err := store.Get(sum.SHA256)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, sampleDoc) {
		t.Errorf("Get() = %q, want %q", got, sampleDoc)
	}
	if !store.Exists(sum.SHA256) {
		t.Error("Exists() = false after Put")
	}

	byBlake, err := store.GetByBlake3(sum.BLAKE3)
	if err != nil {
		t.Fatalf("GetByBlake3 failed: %v", err)
	}
	if !bytes.Equal(byBlake, sampleDoc) {
		t.Errorf("GetByBlake3() = %q, want %q", byBlake, sampleDoc)
	}
}

func TestStore_PutTwice(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	first, err := store.Put(sampleDoc)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	second, err := store.Put(sampleDoc)
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if *first != *second {
		t.Errorf("digests differ: %+v vs %+v", first, second)
	}

	entries, err := os.ReadDir(filepath.Join(root, "blobs", "sha256", first.SHA256[:2]))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d files in prefix directory, want 1", len(entries))
	}
}

func TestStore_Errors(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	missing := Hash([]byte("never stored"))

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"get missing", func() error { _, err := store.Get(missing); return err }, ErrBlobNotFound},
		{"get invalid", func() error { _, err := store.Get("F00"); return err }, ErrInvalidHash},
		{"lookup missing", func() error { _, err := store.LookupBlake3(missing); return err }, ErrBlobNotFound},
		{"lookup invalid", func() error { _, err := store.LookupBlake3("../x"); return err }, ErrInvalidHash},
		{"get by blake3 missing", func() error { _, err := store.GetByBlake3(missing); return err }, ErrBlobNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if store.Exists("not-a-hash") {
		t.Error("Exists() = true for an invalid digest")
	}
}

func TestStore_CorruptPointer(t *testing.T) {
	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	b3 := Blake3Hash([]byte("x"))
	dir := filepath.Join(root, "blobs", "blake3", b3[:2])
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, b3+".json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LookupBlake3(b3); err == nil {
		t.Error("LookupBlake3 succeeded on a corrupt pointer")
	}
}

func TestStore_RenameError(t *testing.T) {
	orig := osRename
	defer func() { osRename = orig }()
	osRename = func(string, string) error { return errors.New("rename failed") }

	root := t.TempDir()
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := store.Put(sampleDoc); err == nil {
		t.Fatal("Put succeeded although rename failed")
	}

	sum := Sum(sampleDoc)
	entries, _ := os.ReadDir(filepath.Join(root, "blobs", "sha256", sum.SHA256[:2]))
	if len(entries) != 0 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestStore_CloseError(t *testing.T) {
	orig := tempFileClose
	defer func() { tempFileClose = orig }()
	tempFileClose = func(f io.Closer) error {
		f.Close()
		return errors.New("close failed")
	}

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if _, err := store.Put(sampleDoc); err == nil {
		t.Error("Put succeeded although close failed")
	}
}
