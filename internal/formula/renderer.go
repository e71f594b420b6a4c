package formula

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/ralt/brewpack/internal/models"
	"github.com/ralt/brewpack/internal/utils"
	"github.com/sirupsen/logrus"
)

// Data is the view of a package that the formula template renders
type Data struct {
	ClassName   string
	Description string
	Homepage    string
	URL         string
	SHA256      string
	Version     string
	Codesign    bool
	Commands    []string
	Caveat      string // already trimmed; empty means no caveats block
}

var (
	rubyStringEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		`#{`, `\#{`,
		`#@`, `\#@`,
		`#$`, `\#$`,
	)

	heredocEscaper = strings.NewReplacer(
		`\`, `\\`,
		`#{`, `\#{`,
		`#@`, `\#@`,
		`#$`, `\#$`,
	)

	templates = template.Must(template.New("brewpack").Funcs(template.FuncMap{
		"quote":     quote,
		"heredoc":   heredoc,
		"delimiter": delimiter,
	}).Parse(formulaTemplate))
)

// quote renders s as a Ruby double-quoted string literal
func quote(s string) string {
	return `"` + rubyStringEscaper.Replace(s) + `"`
}

// heredoc indents each caveat line for a <<~ block. Ruby strips the common
// indentation again, so the installed text equals the input. Whitespace-only
// lines keep their spaces after the indent.
func heredoc(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = "      " + heredocEscaper.Replace(line)
	}
	return strings.Join(lines, "\n")
}

// delimiter picks a heredoc terminator that no caveat line would match
func delimiter(s string) string {
	lines := strings.Split(s, "\n")
	tag := "EOS"
	for n := 1; containsLine(lines, tag); n++ {
		tag = fmt.Sprintf("EOS%d", n)
	}
	return tag
}

func containsLine(lines []string, tag string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == tag {
			return true
		}
	}
	return false
}

var (
	classSeparatorRe = regexp.MustCompile(`[-_.\s]([a-zA-Z0-9])`)
	classVersionRe   = regexp.MustCompile(`(.)@(\d)`)
)

// ClassName converts a formula name to the Ruby class Homebrew expects,
// e.g. foo -> Foo, my-tool -> MyTool, python@3 -> PythonAT3.
func ClassName(name string) string {
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	first, size := utf8.DecodeRuneInString(lower)
	className := string(unicode.ToUpper(first)) + lower[size:]

	className = classSeparatorRe.ReplaceAllStringFunc(className, func(m string) string {
		return strings.ToUpper(m[1:])
	})
	className = strings.ReplaceAll(className, "+", "x")

	if loc := classVersionRe.FindStringSubmatchIndex(className); loc != nil {
		className = className[:loc[0]] + className[loc[2]:loc[3]] + "AT" + className[loc[4]:loc[5]] + className[loc[1]:]
	}

	return className
}

// ReleaseURL returns the download URL for the tarball. An explicit
// download_url wins; otherwise the GitHub release asset URL is derived.
func ReleaseURL(cfg *models.PackageConfig, tarballName string) string {
	if cfg.DownloadURL != "" {
		return cfg.DownloadURL
	}
	return fmt.Sprintf("https://github.com/%s/releases/download/v%s/%s", cfg.GitHubRepo, cfg.Version, tarballName)
}

// NewData builds the template view for a tarball and its checksum
func NewData(cfg *models.PackageConfig, tarballPath, sha256 string) *Data {
	return &Data{
		ClassName:   ClassName(cfg.Name),
		Description: cfg.Description,
		Homepage:    cfg.Homepage,
		URL:         ReleaseURL(cfg, filepath.Base(tarballPath)),
		SHA256:      sha256,
		Version:     cfg.Version,
		Codesign:    cfg.Codesign,
		Commands:    cfg.Commands,
		Caveat:      strings.TrimSpace(cfg.Caveat),
	}
}

// RenderSection renders one named section of the formula
func RenderSection(section string, data *Data) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, section, data); err != nil {
		return "", fmt.Errorf("failed to render %s section: %w", section, err)
	}
	return buf.String(), nil
}

// Render returns the full formula text
func Render(data *Data) (string, error) {
	return RenderSection("formula", data)
}

// Path returns where the formula for cfg is written
func Path(cfg *models.PackageConfig) string {
	return filepath.Join(cfg.OutputDir, "Formula", fmt.Sprintf("%s.rb", cfg.Name))
}

// Write renders the formula for the tarball and writes it to
// <output_dir>/Formula/<name>.rb, returning that path.
func Write(tarballPath, sha256 string, cfg *models.PackageConfig) (string, error) {
	data := NewData(cfg, tarballPath, sha256)

	text, err := Render(data)
	if err != nil {
		return "", &models.BuildError{Type: models.ErrFormula, Path: cfg.Name, Err: err}
	}

	formulaPath := Path(cfg)
	if err := utils.WriteFile(formulaPath, []byte(text), 0644); err != nil {
		return "", models.NewFileOpError(formulaPath, fmt.Errorf("failed to write formula: %w", err))
	}

	logrus.Infof("Generated formula for %s (%s.rb)", cfg.Name, data.ClassName)
	return formulaPath, nil
}
