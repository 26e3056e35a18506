package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestZip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "products", "Rennrad Alu")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{"1.jpg": "first", "2.jpg": "second"}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	zipPath, err := Zip(dir)
	if err != nil {
		t.Fatalf("Zip() error = %v", err)
	}
	if zipPath != dir+".zip" {
		t.Errorf("zip path = %s", zipPath)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("directory not removed: %v", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		if string(body) != files[f.Name] {
			t.Errorf("%s = %q, want %q", f.Name, body, files[f.Name])
		}
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "1.jpg" || names[1] != "2.jpg" {
		t.Errorf("entries = %v", names)
	}
}

func TestZipEmptyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	zipPath, err := Zip(dir)
	if err != nil {
		t.Fatalf("Zip() error = %v", err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if len(r.File) != 0 {
		t.Errorf("got %d entries, want 0", len(r.File))
	}
}

func TestZipMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	if _, err := Zip(dir); err == nil {
		t.Fatal("Zip() on missing dir succeeded")
	}
	if _, err := os.Stat(dir + ".zip"); !os.IsNotExist(err) {
		t.Errorf("partial archive left behind")
	}
}
