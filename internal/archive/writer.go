package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/ralt/brewpack/internal/models"
	"github.com/ralt/brewpack/internal/utils"
	"github.com/sirupsen/logrus"
)

// Create archives srcDir into <outputDir>/<name>-<version>.tar.<ext>. Every
// entry lives under a top-level directory called name.
func Create(ctx context.Context, srcDir, outputDir, name, version string, compression models.Compression) (string, error) {
	if err := utils.RequireDir(srcDir); err != nil {
		return "", models.NewFileOpError(srcDir, fmt.Errorf("files directory: %w", err))
	}

	if err := utils.EnsureDir(outputDir); err != nil {
		return "", models.NewFileOpError(outputDir, err)
	}

	tarballPath := filepath.Join(outputDir, fmt.Sprintf("%s-%s%s", name, version, compression.Extension()))

	f, err := os.Create(tarballPath)
	if err != nil {
		return "", models.NewFileOpError(tarballPath, err)
	}
	defer f.Close()

	if err := write(ctx, f, srcDir, name, compression, tarballPath); err != nil {
		return "", models.NewFileOpError(tarballPath, err)
	}

	if err := f.Close(); err != nil {
		return "", models.NewFileOpError(tarballPath, err)
	}

	logrus.Infof("Created archive %s", tarballPath)
	return tarballPath, nil
}

// write streams the tar of srcDir through the compressor into w. skipPath is
// left out of the archive so an output directory nested in srcDir does not
// pick up the tarball being written.
func write(ctx context.Context, w io.Writer, srcDir, root string, compression models.Compression, skipPath string) error {
	cw, err := newCompressor(w, compression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	if err := addTree(ctx, tw, srcDir, root, skipPath); err != nil {
		tw.Close()
		cw.Close()
		return err
	}

	if err := tw.Close(); err != nil {
		cw.Close()
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}

	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to finish %s stream: %w", compression, err)
	}

	return nil
}

func addTree(ctx context.Context, tw *tar.Writer, srcDir, root, skipPath string) error {
	base, err := filepath.EvalSymlinks(srcDir)
	if err != nil {
		return err
	}

	skipAbs := ""
	if skipPath != "" {
		if dir, err := filepath.EvalSymlinks(filepath.Dir(skipPath)); err == nil {
			skipAbs, _ = filepath.Abs(filepath.Join(dir, filepath.Base(skipPath)))
		}
	}

	return filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if skipAbs != "" {
			if abs, err := filepath.Abs(p); err == nil && abs == skipAbs {
				logrus.Debugf("Skipping output archive %s", p)
				return nil
			}
		}

		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}

		entryName := root
		if rel != "." {
			entryName = path.Join(root, filepath.ToSlash(rel))
		}

		return addEntry(tw, p, entryName, d)
	})
}

func addEntry(tw *tar.Writer, p, entryName string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	link := ""
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		link, err = os.Readlink(p)
		if err != nil {
			return err
		}
	case info.IsDir(), info.Mode().IsRegular():
	default:
		logrus.Warnf("Skipping unsupported file type: %s", p)
		return nil
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}

	hdr.Name = entryName
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", entryName, err)
	}

	logrus.Debugf("Added %s", hdr.Name)

	if !info.Mode().IsRegular() {
		return nil
	}

	src, err := os.Open(p)
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("failed to add %s: %w", entryName, err)
	}

	return nil
}
