// Package urlfile loads the newline-delimited product URL list.
package urlfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoURLs is returned when the file exists but contains no usable URLs.
var ErrNoURLs = errors.New("no valid URLs found")

// Load reads one URL per line from path. Blank lines and lines that do not
// begin with "http" are discarded.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open URL file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "http") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read URL file: %w", err)
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoURLs, path)
	}
	return urls, nil
}
