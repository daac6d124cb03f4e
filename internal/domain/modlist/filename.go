package modlist

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// errBadArtifactURL is returned when a download URL yields no usable file name.
var errBadArtifactURL = errors.New("download url has no usable file name")

// FilenameFromURL derives the local jar name from a download URL: the final
// path segment, percent-decoded. Names that would escape the target directory
// are rejected.
func FilenameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse download url %q: %w", rawURL, err)
	}

	escaped := parsed.EscapedPath()

	segment := escaped[strings.LastIndex(escaped, "/")+1:]
	if segment == "" {
		return "", fmt.Errorf("%q: %w", rawURL, errBadArtifactURL)
	}

	name, err := url.PathUnescape(segment)
	if err != nil {
		return "", fmt.Errorf("decode file name of %q: %w", rawURL, err)
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%q: %w", rawURL, errBadArtifactURL)
	}

	return name, nil
}
