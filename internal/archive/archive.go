package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Zip packs the files under dir into dir+".zip" and removes dir.
// Entry names are relative to dir.
func Zip(dir string) (string, error) {
	dir = filepath.Clean(dir)
	zipPath := dir + ".zip"

	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("could not create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})

	closeErr := zw.Close()
	if err := out.Close(); closeErr == nil {
		closeErr = err
	}
	if walkErr != nil || closeErr != nil {
		os.Remove(zipPath)
		if walkErr != nil {
			return "", fmt.Errorf("could not archive %s: %w", dir, walkErr)
		}
		return "", fmt.Errorf("could not finish archive: %w", closeErr)
	}

	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("could not remove %s: %w", dir, err)
	}
	return zipPath, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
