package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one member of an archive
type Entry struct {
	Name     string
	Size     int64
	Mode     os.FileMode
	Linkname string
	IsDir    bool
}

// List returns the entries of an archive in stored order
func List(archivePath string) ([]Entry, error) {
	var entries []Entry

	err := walkArchive(archivePath, func(hdr *tar.Header, _ io.Reader) error {
		entries = append(entries, Entry{
			Name:     hdr.Name,
			Size:     hdr.Size,
			Mode:     hdr.FileInfo().Mode(),
			Linkname: hdr.Linkname,
			IsDir:    hdr.Typeflag == tar.TypeDir,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Extract unpacks an archive into destDir. Entries that would land outside
// destDir are rejected, as are symlinks pointing outside it and entries
// written through an existing symlink.
func Extract(ctx context.Context, archivePath, destDir string) error {
	dest, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	return walkArchive(archivePath, func(hdr *tar.Header, r io.Reader) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		target := filepath.Join(dest, filepath.FromSlash(hdr.Name))
		if !within(dest, target) {
			return fmt.Errorf("entry %q escapes destination", hdr.Name)
		}

		if err := checkNoSymlinkParents(dest, target); err != nil {
			return fmt.Errorf("entry %q: %w", hdr.Name, err)
		}

		mode := hdr.FileInfo().Mode().Perm()

		switch hdr.Typeflag {
		case tar.TypeDir:
			return os.MkdirAll(target, 0755)
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			return writeEntry(target, r, mode)
		case tar.TypeSymlink:
			linkTarget := filepath.FromSlash(hdr.Linkname)
			if !filepath.IsAbs(linkTarget) {
				linkTarget = filepath.Join(filepath.Dir(target), linkTarget)
			}
			if !within(dest, linkTarget) {
				return fmt.Errorf("symlink %q -> %q escapes destination", hdr.Name, hdr.Linkname)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			return os.Symlink(hdr.Linkname, target)
		default:
			return nil
		}
	})
}

// within reports whether p is dest or lies below it
func within(dest, p string) bool {
	p = filepath.Clean(p)
	return p == dest || strings.HasPrefix(p, dest+string(os.PathSeparator))
}

// checkNoSymlinkParents fails if any existing directory between dest and
// target is a symlink, or if target itself is one
func checkNoSymlinkParents(dest, target string) error {
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == "." {
		return err
	}

	current := dest
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		current = filepath.Join(current, part)

		info, err := os.Lstat(current)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing to write through symlink %s", current)
		}
	}

	return nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func walkArchive(archivePath string, fn func(hdr *tar.Header, r io.Reader) error) error {
	compression, err := DetectCompression(archivePath)
	if err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	dr, err := newDecompressor(f, compression)
	if err != nil {
		return fmt.Errorf("failed to open %s stream: %w", compression, err)
	}
	defer dr.Close()

	tr := tar.NewReader(dr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}
