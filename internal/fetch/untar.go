package fetch

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// untar extracts a tar stream into dir. Entry names must stay inside
// dir: absolute paths, ".." components and link entries are rejected.
func untar(r io.Reader, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		path, err := securePath(dir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := writeEntry(path, tr, hdr.Mode); err != nil {
				return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
			}
		case tar.TypeSymlink, tar.TypeLink:
			return fmt.Errorf("link entry %q in archive", hdr.Name)
		default:
			// metadata entries (pax headers and friends) carry no files
		}
	}
}

func writeEntry(path string, r io.Reader, mode int64) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(mode)&0777)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func securePath(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path %q in archive", name)
	}
	path := filepath.Join(dir, name)
	if path != dir && !strings.HasPrefix(path, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes the archive root", name)
	}
	return path, nil
}
