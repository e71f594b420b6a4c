// Package instructions prints the manual steps that follow a build:
// publishing the tap repository and installing the formula from it.
package instructions

import (
	"fmt"
	"io"

	"github.com/ralt/brewpack/internal/models"
)

// Print writes publish and install instructions for cfg to w
func Print(w io.Writer, cfg *models.PackageConfig) error {
	pw := &printer{w: w}

	pw.printf("\nCreated release v%s and upload %s\n\n\n", cfg.Version, cfg.TarballName())

	pw.printf("To push to GitHub, run:\n")
	pw.printf("  cd %s\n", cfg.OutputDir)
	pw.printf("  git init\n")
	pw.printf("  git add .\n")
	pw.printf("  git commit -m \"Initial brew tap commit\"\n")
	pw.printf("  git branch -M main\n")
	pw.printf("  git remote add origin https://github.com/%s.git\n", cfg.GitHubRepo)
	pw.printf("  git push -u origin main\n\n\n")

	pw.printf("To install with brew:\n")
	pw.printf("  brew tap %s\n", cfg.GitHubRepo)
	pw.printf("  brew install %s\n", cfg.Name)

	return pw.err
}

// PrintSignature tells the user to publish the detached signature and how
// installers can check it against the exported key
func PrintSignature(w io.Writer, tarballName, signatureName, keyName string) error {
	pw := &printer{w: w}

	pw.printf("\n\nUpload %s alongside %s. To verify a download:\n", signatureName, tarballName)
	pw.printf("  gpg --import %s\n", keyName)
	pw.printf("  gpg --verify %s %s\n", signatureName, tarballName)

	return pw.err
}

// printer remembers the first write error so Print can report it once
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
