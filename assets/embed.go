// Package assets embeds the default content shipped with the server: the
// puzzle artwork catalogue and the trivia question bank.
package assets

import (
	"bufio"
	"embed"
	"fmt"
	"net/url"
	"strings"
)

//go:embed images.txt questions.json
var content embed.FS

// imageURLs parses a line-oriented URL list. Blank lines and lines starting
// with "#" are skipped; every other line must be an absolute http(s) URL.
func imageURLs(name string) ([]string, error) {
	f, err := content.Open(name)
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := url.Parse(line)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("assets: %s:%d: not an image URL: %q", name, n, line)
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("assets: %s: %w", name, err)
	}
	return urls, nil
}

// PuzzleImages returns the embedded artwork URLs.
func PuzzleImages() ([]string, error) {
	return imageURLs("images.txt")
}

// QuestionBank returns the embedded question bank JSON.
func QuestionBank() ([]byte, error) {
	return content.ReadFile("questions.json")
}
