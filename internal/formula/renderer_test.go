package formula

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ralt/brewpack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSHA = "2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae"

func testConfig(outputDir string) *models.PackageConfig {
	return &models.PackageConfig{
		Name:        "foo",
		Version:     "1.0",
		Description: "Foo does things",
		Homepage:    "https://example.com/foo",
		GitHubRepo:  "me/foo",
		FilesDir:    "dist",
		OutputDir:   outputDir,
		Compression: models.CompressionGzip,
	}
}

func TestRenderMinimalFormula(t *testing.T) {
	cfg := testConfig("out")
	text, err := Render(NewData(cfg, "out/foo-1.0.tar.gz", testSHA))
	require.NoError(t, err)

	expected := `class Foo < Formula
  desc "Foo does things"
  homepage "https://example.com/foo"
  url "https://github.com/me/foo/releases/download/v1.0/foo-1.0.tar.gz"
  sha256 "` + testSHA + `"
  version "1.0"

  def install
    bin.install Dir["*"]
  end
end
`
	assert.Equal(t, expected, text)
}

func TestRenderFullFormula(t *testing.T) {
	cfg := testConfig("out")
	cfg.DownloadURL = "https://cdn.example.com/foo-1.0.tar.gz"
	cfg.Codesign = true
	cfg.Commands = []string{"echo first", "echo second"}
	cfg.Caveat = "\n  Run foo --help.\n"

	text, err := Render(NewData(cfg, "out/foo-1.0.tar.gz", testSHA))
	require.NoError(t, err)

	expected := `class Foo < Formula
  desc "Foo does things"
  homepage "https://example.com/foo"
  url "https://cdn.example.com/foo-1.0.tar.gz"
  sha256 "` + testSHA + `"
  version "1.0"

  def install
    bin.install Dir["*"]
    Dir["#{bin}/*"].each do |f|
      system "codesign", "--force", "--sign", "-", f if File.file?(f)
    end
    system "echo first"
    system "echo second"
  end

  def caveats
    <<~EOS
      Run foo --help.
    EOS
  end
end
`
	assert.Equal(t, expected, text)
}

func TestURLSection(t *testing.T) {
	cfg := testConfig("out")

	derived, err := RenderSection("url", NewData(cfg, "/abs/out/foo-1.0.tar.gz", testSHA))
	require.NoError(t, err)
	assert.Equal(t, "  url \"https://github.com/me/foo/releases/download/v1.0/foo-1.0.tar.gz\"\n", derived)

	cfg.DownloadURL = "https://example.com/dl?id=42&v=1.0"
	explicit, err := RenderSection("url", NewData(cfg, "out/foo-1.0.tar.gz", testSHA))
	require.NoError(t, err)
	assert.Equal(t, "  url \"https://example.com/dl?id=42&v=1.0\"\n", explicit)
}

func TestCodesignSectionPresentIffEnabled(t *testing.T) {
	cfg := testConfig("out")

	for _, enabled := range []bool{false, true} {
		cfg.Codesign = enabled
		data := NewData(cfg, "foo-1.0.tar.gz", testSHA)

		section, err := RenderSection("codesign", data)
		require.NoError(t, err)
		full, err := Render(data)
		require.NoError(t, err)

		if enabled {
			assert.Contains(t, section, `system "codesign", "--force", "--sign", "-", f if File.file?(f)`)
			assert.Contains(t, full, section)
		} else {
			assert.Empty(t, section)
			assert.NotContains(t, full, "codesign")
		}
	}
}

func TestCommandsSectionOneLinePerEntryInOrder(t *testing.T) {
	cfg := testConfig("out")
	cfg.Commands = []string{"mkdir -p /tmp/foo", "foo init", "foo --version"}

	section, err := RenderSection("commands", NewData(cfg, "foo-1.0.tar.gz", testSHA))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(section, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `    system "mkdir -p /tmp/foo"`, lines[0])
	assert.Equal(t, `    system "foo init"`, lines[1])
	assert.Equal(t, `    system "foo --version"`, lines[2])
}

func TestCommandsSectionAbsentWhenEmpty(t *testing.T) {
	cfg := testConfig("out")
	data := NewData(cfg, "foo-1.0.tar.gz", testSHA)

	section, err := RenderSection("commands", data)
	require.NoError(t, err)
	assert.Empty(t, section)

	full, err := Render(data)
	require.NoError(t, err)
	assert.NotContains(t, full, "system ")
}

func TestCaveatsSection(t *testing.T) {
	cfg := testConfig("out")

	for _, caveat := range []string{"", "   \n\t  "} {
		cfg.Caveat = caveat
		section, err := RenderSection("caveats", NewData(cfg, "foo-1.0.tar.gz", testSHA))
		require.NoError(t, err)
		assert.Empty(t, section, "caveat %q", caveat)
	}

	cases := []string{
		"\n\nFirst line.\n\n  Indented line.\nLast line.\n\n",
		"Above.\n   \nBelow.",
		"Tabs\n\t\nkept.",
	}
	for _, caveat := range cases {
		cfg.Caveat = caveat
		section, err := RenderSection("caveats", NewData(cfg, "foo-1.0.tar.gz", testSHA))
		require.NoError(t, err)

		assert.Equal(t, strings.TrimSpace(caveat), heredocBody(t, section, "EOS"), "caveat %q", caveat)
	}
}

func TestCaveatsDelimiterAvoidsCaveatText(t *testing.T) {
	cfg := testConfig("out")

	cases := map[string]string{
		"Plain text.":                     "EOS",
		"Before\nEOS\nAfter":              "EOS1",
		"Before\n  EOS  \nEOS1\nAfter":     "EOS2",
		"EOSX is not the delimiter alone": "EOS",
	}
	for caveat, tag := range cases {
		cfg.Caveat = caveat
		section, err := RenderSection("caveats", NewData(cfg, "foo-1.0.tar.gz", testSHA))
		require.NoError(t, err)

		assert.Contains(t, section, "    <<~"+tag+"\n", "caveat %q", caveat)
		assert.Equal(t, strings.TrimSpace(caveat), heredocBody(t, section, tag), "caveat %q", caveat)
	}
}

// heredocBody undoes the squiggly heredoc indentation the way Ruby does
func heredocBody(t *testing.T, section, tag string) string {
	t.Helper()
	opener := "<<~" + tag + "\n"
	start := strings.Index(section, opener)
	end := strings.Index(section, "\n    "+tag+"\n")
	require.True(t, start >= 0 && end > start, "no heredoc in %q", section)

	lines := strings.Split(section[start+len(opener):end], "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "      ")
	}
	return strings.Join(lines, "\n")
}

func TestEscaping(t *testing.T) {
	cfg := testConfig("out")
	cfg.Description = `The "best" tool #{evil}`
	cfg.Commands = []string{`echo "hi" \ there`}
	cfg.Caveat = `Path is C:\foo, not #{HOME}`

	text, err := Render(NewData(cfg, "foo-1.0.tar.gz", testSHA))
	require.NoError(t, err)

	assert.Contains(t, text, `desc "The \"best\" tool \#{evil}"`)
	assert.Contains(t, text, `system "echo \"hi\" \\ there"`)
	assert.Contains(t, text, `      Path is C:\\foo, not \#{HOME}`)
}

func TestClassName(t *testing.T) {
	cases := map[string]string{
		"foo":         "Foo",
		"Foo":         "Foo",
		"fooBar":      "Foobar",
		"my-tool":     "MyTool",
		"my_tool":     "MyTool",
		"foo.bar":     "FooBar",
		"gtk+":        "Gtkx",
		"python@3":    "PythonAT3",
		"openssl@1.1": "OpensslAT11",
		"":            "",
	}
	for name, want := range cases {
		assert.Equal(t, want, ClassName(name), name)
	}
}

func TestWriteCreatesFormulaDir(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "tap")
	cfg := testConfig(outputDir)

	path, err := Write(filepath.Join(outputDir, "foo-1.0.tar.gz"), testSHA, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "Formula", "foo.rb"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "class Foo < Formula\n"))
	assert.True(t, strings.HasSuffix(string(data), "end\n"))
}

func TestParseRoundTrip(t *testing.T) {
	outputDir := t.TempDir()
	cfg := testConfig(outputDir)
	cfg.Description = `Says "hello" to #{you}`
	cfg.Codesign = true
	cfg.Commands = []string{"echo hi"}
	cfg.Caveat = "Enjoy."

	path, err := Write(filepath.Join(outputDir, "foo-1.0.tar.gz"), testSHA, cfg)
	require.NoError(t, err)

	info, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "Foo", info.ClassName)
	assert.Equal(t, cfg.Description, info.Description)
	assert.Equal(t, cfg.Homepage, info.Homepage)
	assert.Equal(t, "https://github.com/me/foo/releases/download/v1.0/foo-1.0.tar.gz", info.URL)
	assert.Equal(t, testSHA, info.SHA256)
	assert.Equal(t, "1.0", info.Version)
}

func TestParseRejectsNonFormula(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.rb")
	require.NoError(t, os.WriteFile(path, []byte("puts 'hi'\n"), 0644))

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestParseIgnoresCaveatText(t *testing.T) {
	outputDir := t.TempDir()
	cfg := testConfig(outputDir)
	cfg.Caveat = "Upgrading from the old release:\nversion \"0.9\"\nurl \"https://example.com/old.tar.gz\"\nsha256 \"abcdef\"\ndesc \"old\""

	path, err := Write(filepath.Join(outputDir, "foo-1.0.tar.gz"), testSHA, cfg)
	require.NoError(t, err)

	info, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0", info.Version)
	assert.Equal(t, "https://github.com/me/foo/releases/download/v1.0/foo-1.0.tar.gz", info.URL)
	assert.Equal(t, testSHA, info.SHA256)
	assert.Equal(t, cfg.Description, info.Description)
}
