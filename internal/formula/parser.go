package formula

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Info holds the fields read back from a formula file
type Info struct {
	ClassName   string
	Description string
	Homepage    string
	URL         string
	SHA256      string
	Version     string
}

var (
	classRe    = regexp.MustCompile(`^class\s+(\S+)\s+<\s+Formula`)
	descRe     = regexp.MustCompile(`^desc\s+"((?:[^"\\]|\\.)*)"`)
	homepageRe = regexp.MustCompile(`^homepage\s+"((?:[^"\\]|\\.)*)"`)
	urlRe      = regexp.MustCompile(`^url\s+"((?:[^"\\]|\\.)*)"`)
	sha256Re   = regexp.MustCompile(`^sha256\s+"([0-9a-fA-F]+)"`)
	versionRe  = regexp.MustCompile(`^version\s+"((?:[^"\\]|\\.)*)"`)

	rubyStringUnescaper = strings.NewReplacer(
		`\\`, `\`,
		`\"`, `"`,
		`\n`, "\n",
		`\#`, `#`,
	)
)

// Parse reads the stanzas of a formula's class header. Scanning stops at the
// first method definition, so install steps and caveat text are never read.
func Parse(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &Info{}
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "def ") {
			break
		}

		if matches := classRe.FindStringSubmatch(line); len(matches) > 1 {
			info.ClassName = matches[1]
		}
		if matches := descRe.FindStringSubmatch(line); len(matches) > 1 {
			info.Description = unquote(matches[1])
		}
		if matches := homepageRe.FindStringSubmatch(line); len(matches) > 1 {
			info.Homepage = unquote(matches[1])
		}
		if matches := urlRe.FindStringSubmatch(line); len(matches) > 1 {
			info.URL = unquote(matches[1])
		}
		if matches := sha256Re.FindStringSubmatch(line); len(matches) > 1 {
			info.SHA256 = strings.ToLower(matches[1])
		}
		if matches := versionRe.FindStringSubmatch(line); len(matches) > 1 {
			info.Version = unquote(matches[1])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if info.ClassName == "" {
		return nil, fmt.Errorf("%s does not define a Formula class", path)
	}

	return info, nil
}

func unquote(s string) string {
	return rubyStringUnescaper.Replace(s)
}
