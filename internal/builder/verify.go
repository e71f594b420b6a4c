package builder

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/ralt/brewpack/internal/archive"
	"github.com/ralt/brewpack/internal/formula"
	"github.com/ralt/brewpack/internal/models"
	"github.com/ralt/brewpack/internal/utils"
	"github.com/sirupsen/logrus"
)

// VerifyReport compares the formula on disk with the archive it describes
type VerifyReport struct {
	TarballPath    string
	FormulaPath    string
	FormulaSHA256  string
	ArchiveSHA256  string
	FormulaURL     string
	ExpectedURL    string
	FormulaVersion string
	Problems       []string
}

// OK reports whether no mismatch was found
func (r *VerifyReport) OK() bool {
	return len(r.Problems) == 0
}

func (r *VerifyReport) addProblem(format string, args ...interface{}) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// Verify checks that the formula generated for cfg still matches its
// archive: same digest, expected URL and version, entries rooted at the
// package name. Missing files are errors; mismatches land in the report.
func Verify(ctx context.Context, cfg *models.PackageConfig) (*VerifyReport, error) {
	tarballPath := filepath.Join(cfg.OutputDir, cfg.TarballName())
	formulaPath := formula.Path(cfg)

	report := &VerifyReport{
		TarballPath: tarballPath,
		FormulaPath: formulaPath,
		ExpectedURL: formula.ReleaseURL(cfg, cfg.TarballName()),
	}

	info, err := formula.Parse(formulaPath)
	if err != nil {
		return nil, &models.BuildError{Type: models.ErrFormula, Path: formulaPath, Err: err}
	}
	report.FormulaSHA256 = info.SHA256
	report.FormulaURL = info.URL
	report.FormulaVersion = info.Version

	sum, err := utils.CalculateSHA256(tarballPath)
	if err != nil {
		return nil, models.NewFileOpError(tarballPath, err)
	}
	report.ArchiveSHA256 = sum

	if info.SHA256 != sum {
		report.addProblem("sha256 mismatch: formula has %s, archive is %s", info.SHA256, sum)
	}
	if info.URL != report.ExpectedURL {
		report.addProblem("url mismatch: formula has %s, expected %s", info.URL, report.ExpectedURL)
	}
	if info.Version != cfg.Version {
		report.addProblem("version mismatch: formula has %s, config has %s", info.Version, cfg.Version)
	}
	if want := formula.ClassName(cfg.Name); info.ClassName != want {
		report.addProblem("class name mismatch: formula has %s, expected %s", info.ClassName, want)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := archive.List(tarballPath)
	if err != nil {
		return nil, models.NewFileOpError(tarballPath, err)
	}
	for _, entry := range entries {
		name := path.Clean(entry.Name)
		if name != cfg.Name && !strings.HasPrefix(name, cfg.Name+"/") {
			report.addProblem("archive entry %s is not under %s/", entry.Name, cfg.Name)
			break
		}
	}

	for _, problem := range report.Problems {
		logrus.Warn(problem)
	}

	return report, nil
}
