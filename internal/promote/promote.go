// Package promote moves files uploaded to the public temp area into
// permanent storage.
package promote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"mediadocs/internal/apperror"
	"mediadocs/internal/storage"
)

// Config locates the temp area on disk and in public URLs.
type Config struct {
	// TempDir is the directory backing PublicPrefix.
	TempDir string
	// PublicPrefix is the URL path temp files are served under, e.g. /uploads/temp/.
	PublicPrefix string
}

// TempFile is a resolved, existing temp upload.
type TempFile struct {
	PublicPath string
	LocalPath  string
	Name       string
	Size       int64
}

// Promoter validates temp paths and imports them into a Storage.
type Promoter struct {
	tempDir string
	prefix  string
	store   storage.Storage
	namer   *Namer
}

// New returns a Promoter. namer may be shared with other writers so keys stay
// unique across the process.
func New(cfg Config, store storage.Storage, namer *Namer) (*Promoter, error) {
	if strings.TrimSpace(cfg.TempDir) == "" {
		return nil, fmt.Errorf("temp dir is required")
	}
	abs, err := filepath.Abs(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("resolve temp dir: %w", err)
	}
	prefix := cfg.PublicPrefix
	if prefix == "" {
		prefix = "/uploads/temp/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if namer == nil {
		namer = NewNamer()
	}
	return &Promoter{tempDir: abs, prefix: prefix, store: store, namer: namer}, nil
}

// Resolve maps a public temp path to its location under the temp dir. It
// only inspects the string; the filesystem is not touched.
func (p *Promoter) Resolve(publicPath string) (string, error) {
	if publicPath == "" || strings.ContainsRune(publicPath, 0) {
		return "", apperror.ErrInvalidTempPath
	}
	if !strings.HasPrefix(publicPath, p.prefix) {
		return "", apperror.ErrInvalidTempPath
	}
	rel := strings.TrimPrefix(publicPath, p.prefix)
	if rel == "" || strings.HasPrefix(rel, "/") || strings.Contains(rel, "\\") || filepath.IsAbs(rel) {
		return "", apperror.ErrInvalidTempPath
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", apperror.ErrInvalidTempPath
	}

	full := filepath.Join(p.tempDir, clean)
	relToRoot, err := filepath.Rel(p.tempDir, full)
	if err != nil || strings.HasPrefix(relToRoot, "..") {
		return "", apperror.ErrInvalidTempPath
	}
	return full, nil
}

// Lookup resolves publicPath and checks that a regular file is there.
func (p *Promoter) Lookup(publicPath string) (*TempFile, error) {
	full, err := p.Resolve(publicPath)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.ErrTempFileNotFound
		}
		return nil, fmt.Errorf("stat temp file: %w", err)
	}
	if !st.Mode().IsRegular() {
		return nil, apperror.ErrTempFileNotFound
	}
	return &TempFile{
		PublicPath: publicPath,
		LocalPath:  full,
		Name:       filepath.Base(full),
		Size:       st.Size(),
	}, nil
}

// Promote moves the temp file into permanent storage under a fresh key and
// returns the stored object. The source is gone afterwards.
func (p *Promoter) Promote(ctx context.Context, publicPath, ownerID string, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	tf, err := p.Lookup(publicPath)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	key := p.namer.Key(ownerID, tf.Name)

	info, err := p.store.Import(ctx, tf.LocalPath, key, opt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// lost a race with another promotion or the temp sweeper
			return storage.ObjectInfo{}, apperror.ErrTempFileNotFound
		}
		return storage.ObjectInfo{}, fmt.Errorf("promote %s: %w", publicPath, err)
	}
	return info, nil
}
