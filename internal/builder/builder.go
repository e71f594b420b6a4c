package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ralt/brewpack/internal/archive"
	"github.com/ralt/brewpack/internal/formula"
	"github.com/ralt/brewpack/internal/instructions"
	"github.com/ralt/brewpack/internal/models"
	"github.com/ralt/brewpack/internal/signer"
	"github.com/ralt/brewpack/internal/utils"
	"github.com/sirupsen/logrus"
)

// Options controls the optional parts of a build
type Options struct {
	// Signer, when set, writes <tarball>.asc next to the archive
	Signer signer.Signer
	// Out receives the publish/install instructions; nil skips them
	Out io.Writer
}

// Result describes the files a build produced
type Result struct {
	TarballPath   string
	SHA256        string
	Size          int64
	SignaturePath string
	PublicKeyPath string
	FormulaPath   string
}

// PublicKeyFilename is the armored signing key written next to the formula
// tree when the tarball is signed
const PublicKeyFilename = "KEY.asc"

// Build archives cfg.FilesDir, hashes the archive, writes the formula and
// prints the follow-up instructions. Outputs from a failed build are left in
// place; a rerun overwrites them.
func Build(ctx context.Context, cfg *models.PackageConfig, opts Options) (*Result, error) {
	logrus.Infof("Building %s %s", cfg.Name, cfg.Version)
	logrus.Debugf("Configuration: %+v", cfg)

	if err := utils.EnsureDir(cfg.OutputDir); err != nil {
		return nil, models.NewFileOpError(cfg.OutputDir, err)
	}

	// Step 1: archive
	tarballPath, err := archive.Create(ctx, cfg.FilesDir, cfg.OutputDir, cfg.Name, cfg.Version, cfg.Compression)
	if err != nil {
		return nil, err
	}

	// Step 2: checksum
	checksum, err := utils.CalculateChecksum(tarballPath)
	if err != nil {
		return nil, models.NewFileOpError(tarballPath, fmt.Errorf("failed to hash archive: %w", err))
	}
	logrus.Infof("SHA256 %s (%d bytes)", checksum.SHA256, checksum.Size)

	result := &Result{
		TarballPath: tarballPath,
		SHA256:      checksum.SHA256,
		Size:        checksum.Size,
	}

	// Step 3: optional signature
	if opts.Signer != nil {
		sigPath, err := signTarball(opts.Signer, tarballPath)
		if err != nil {
			return nil, err
		}
		result.SignaturePath = sigPath

		keyPath, err := writePublicKey(opts.Signer, cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		result.PublicKeyPath = keyPath
	}

	// Step 4: formula
	formulaPath, err := formula.Write(tarballPath, checksum.SHA256, cfg)
	if err != nil {
		return nil, err
	}
	result.FormulaPath = formulaPath

	// Step 5: instructions
	if opts.Out != nil {
		err := instructions.Print(opts.Out, cfg)
		if err == nil && result.SignaturePath != "" {
			err = instructions.PrintSignature(opts.Out, filepath.Base(tarballPath), filepath.Base(result.SignaturePath), PublicKeyFilename)
		}
		if err != nil {
			return nil, models.NewFileOpError("", fmt.Errorf("failed to print instructions: %w", err))
		}
	}

	logrus.Info("Build completed successfully!")
	return result, nil
}

// signTarball streams the archive through the signer into <tarball>.asc
func signTarball(s signer.Signer, tarballPath string) (string, error) {
	tarball, err := os.Open(tarballPath)
	if err != nil {
		return "", models.NewFileOpError(tarballPath, err)
	}
	defer tarball.Close()

	sigPath := fmt.Sprintf("%s.asc", tarballPath)
	sigFile, err := os.Create(sigPath)
	if err != nil {
		return "", models.NewFileOpError(sigPath, err)
	}
	defer sigFile.Close()

	if err := s.SignReader(sigFile, tarball); err != nil {
		return "", &models.BuildError{Type: models.ErrSigning, Path: tarballPath, Err: err}
	}

	if err := sigFile.Close(); err != nil {
		return "", models.NewFileOpError(sigPath, fmt.Errorf("failed to write signature: %w", err))
	}

	logrus.Infof("Signed archive (%s)", filepath.Base(sigPath))
	return sigPath, nil
}

func writePublicKey(s signer.Signer, outputDir string) (string, error) {
	key, err := s.GetPublicKey()
	if err != nil {
		return "", &models.BuildError{Type: models.ErrSigning, Err: fmt.Errorf("failed to export public key: %w", err)}
	}

	keyPath := filepath.Join(outputDir, PublicKeyFilename)
	if err := utils.WriteFile(keyPath, key, 0644); err != nil {
		return "", models.NewFileOpError(keyPath, fmt.Errorf("failed to write public key: %w", err))
	}

	logrus.Infof("Exported public key (%s)", PublicKeyFilename)
	return keyPath, nil
}
