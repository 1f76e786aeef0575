// Package archive reads and writes the zip archives mcremap consumes and produces:
// mapping archives, game jars, and remapped artifacts.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ManifestName is the jar manifest entry.
const ManifestName = "META-INF/MANIFEST.MF"

// ListEntries returns the names of all non-directory entries, in archive order.
func ListEntries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		names = append(names, f.Name)
	}
	return names, nil
}

// ReadEntry opens the entry called name and hands it to fn.
// It reports false without error when the entry does not exist.
func ReadEntry(path, name string, fn func(io.Reader) error) (bool, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.Name != name || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return true, fmt.Errorf("opening %s in %s: %w", name, path, err)
		}
		defer func() { _ = rc.Close() }()
		return true, fn(rc)
	}
	return false, nil
}

// ReadEntryBytes returns the full contents of one entry.
func ReadEntryBytes(path, name string) ([]byte, bool, error) {
	var data []byte
	found, err := ReadEntry(path, name, func(r io.Reader) error {
		var err error
		data, err = io.ReadAll(r)
		return err
	})
	return data, found, err
}

// Walk calls fn for every non-directory entry in archive order.
func Walk(path string, fn func(f *zip.File) error) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads one zip.File completely.
func ReadFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}

// IsArchive reports whether path is a readable zip archive.
func IsArchive(path string) bool {
	r, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	_ = r.Close()
	return true
}

// Writer writes a zip archive; duplicate entry names are rejected.
type Writer struct {
	file *os.File
	zw   *zip.Writer
	seen map[string]bool
}

// Create creates (or truncates) path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f, zw: zip.NewWriter(f), seen: make(map[string]bool)}, nil
}

// WriteEntry adds one deflated entry.
func (w *Writer) WriteEntry(name string, data []byte) error {
	return w.write(name, zip.Deflate, bytes.NewReader(data))
}

// CopyEntry streams f into the archive under name.
func (w *Writer) CopyEntry(f *zip.File, name string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	method := f.Method
	if method != zip.Store {
		method = zip.Deflate
	}
	return w.write(name, method, rc)
}

func (w *Writer) write(name string, method uint16, r io.Reader) error {
	if w.seen[name] {
		return fmt.Errorf("duplicate archive entry %s", name)
	}
	w.seen[name] = true
	out, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return err
	}
	_, err = io.Copy(out, r)
	return err
}

// Has reports whether an entry was already written.
func (w *Writer) Has(name string) bool {
	return w.seen[name]
}

// Close finishes the archive and closes the file.
func (w *Writer) Close() error {
	zerr := w.zw.Close()
	ferr := w.file.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}

// CopyFile copies src to dst byte for byte.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// ReplaceManifest writes dst as a copy of src whose manifest is taken from
// manifestSource. When manifestSource has no manifest, dst has none either.
func ReplaceManifest(src, manifestSource, dst string) error {
	manifest, hasManifest, err := ReadEntryBytes(manifestSource, ManifestName)
	if err != nil {
		return err
	}

	w, err := Create(dst)
	if err != nil {
		return err
	}
	if hasManifest {
		if err := w.WriteEntry(ManifestName, manifest); err != nil {
			_ = w.Close()
			return err
		}
	}
	err = Walk(src, func(f *zip.File) error {
		if f.Name == ManifestName {
			return nil
		}
		return w.CopyEntry(f, f.Name)
	})
	if err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
