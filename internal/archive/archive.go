// Package archive bundles the outputs of a run into a single zip file.
//
// Archives are reproducible: the same input files always produce the same
// bytes, whatever their modification times, so the digest of an archive
// identifies its content.
package archive

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zip"
	"golang.org/x/crypto/sha3"
)

// ErrNotDirectory is returned when the source of an archive is not a directory.
var ErrNotDirectory = errors.New("archive source is not a directory")

// Digest is the hex encoded SHA3-256 hash of an archive.
type Digest string

func (d Digest) String() string {
	return string(d)
}

// modTime is stamped on every entry.
var modTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Pack writes every regular file below srcDir into the zip archive dst,
// ordered by slash separated path, and returns the digest of the archive.
// dst is removed when packing fails.
func Pack(srcDir, dst string) (digest Digest, err error) {
	names, err := collect(srcDir, dst)
	if err != nil {
		return "", err
	}

	out, err := os.Create(dst) //nolint:gosec // destination chosen by the caller
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
			digest = ""
		}
	}()

	hash := sha3.New256()
	zw := zip.NewWriter(io.MultiWriter(out, hash))
	for _, name := range names {
		if err := addFile(zw, srcDir, name); err != nil {
			_ = zw.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finish archive: %w", err)
	}
	return Digest(hex.EncodeToString(hash.Sum(nil))), nil
}

// collect returns the sorted slash paths of the files below srcDir,
// leaving out dst when it lies inside srcDir.
func collect(srcDir, dst string) ([]string, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return nil, fmt.Errorf("stat archive source: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, srcDir)
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return nil, err
	}

	var names []string
	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == absDst {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk archive source: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func addFile(zw *zip.Writer, srcDir, name string) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modTime,
	}
	header.SetMode(0o644)

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	f, err := os.Open(filepath.Join(srcDir, filepath.FromSlash(name)))
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	return nil
}

// Entries lists the entry names of a zip archive in stored order.
func Entries(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	names := make([]string, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
	}
	return names, nil
}
