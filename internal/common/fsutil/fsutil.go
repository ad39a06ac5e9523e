// Package fsutil holds small filesystem helpers shared by the CLI, discovery
// and the content server.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrTooBig is returned by ReadText when the input exceeds its size ceiling.
var ErrTooBig = errors.New("text resource exceeds size limit")

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists reports whether path exists. Errors other than not-exist count
// as existing so callers surface them on open.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// ReadText reads r fully as UTF-8 text. maxBytes <= 0 disables the ceiling.
func ReadText(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return "", ErrTooBig
	}
	if !utf8.Valid(b) {
		return "", errors.New("text resource is not valid UTF-8")
	}
	return string(b), nil
}

// ReadTextFile opens path and reads it with ReadText.
func ReadTextFile(path string, maxBytes int64) (string, error) {
	p, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()
	s, err := ReadText(f, maxBytes)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return s, nil
}
