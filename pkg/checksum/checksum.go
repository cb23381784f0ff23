// Package checksum verifies downloaded items against ".md5" sidecars.
//
// Digests are computed while the item streams to its destination, so an
// item is never read twice. A sidecar holds either the bare 32 character
// hex digest or the digest followed by whitespace and a file name, as
// written by md5sum.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrMismatch is returned when content does not match its sidecar.
	// A mismatch is never retryable.
	ErrMismatch = errors.New("checksum mismatch")

	// ErrMalformed is returned when a sidecar does not contain a digest.
	ErrMalformed = errors.New("malformed checksum")
)

// Parse extracts the hex digest from sidecar content.
func Parse(sidecar []byte) (string, error) {
	fields := strings.Fields(string(sidecar))
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty sidecar", ErrMalformed)
	}
	sum := strings.ToLower(fields[0])
	if len(sum) != 2*md5.Size {
		return "", fmt.Errorf("%w: %q", ErrMalformed, fields[0])
	}
	if _, err := hex.DecodeString(sum); err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformed, fields[0])
	}
	return sum, nil
}

// Sum returns the hex digest of everything read from r.
func Sum(r io.Reader) (string, error) {
	h := md5.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumFile returns the hex digest of the file at path.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Sum(f)
}

// Copy streams src to dst while hashing it. When expected is non-empty the
// digest is compared after the copy and [ErrMismatch] is returned on a
// difference; the caller is responsible for discarding dst.
func Copy(dst io.Writer, src io.Reader, expected string) (int64, error) {
	h := md5.New()
	n, err := io.Copy(io.MultiWriter(dst, h), src)
	if err != nil {
		return n, err
	}
	if expected == "" {
		return n, nil
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != strings.ToLower(expected) {
		return n, fmt.Errorf("%w: expected %s, got %s", ErrMismatch, expected, got)
	}
	return n, nil
}

// Sidecar formats the content of a sidecar for a file named name.
func Sidecar(sum, name string) []byte {
	return []byte(sum + "  " + name + "\n")
}

// WriteSidecar computes the digest of the file at path and writes the
// sidecar to sidecarPath.
func WriteSidecar(path, sidecarPath, name string) error {
	sum, err := SumFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(sidecarPath, Sidecar(sum, name), 0644)
}
