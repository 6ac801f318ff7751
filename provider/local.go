package provider

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// ensure interface is implemented
var _ Provider = (*LocalProvider)(nil)

// LocalProvider implements the Provider interface on top of an afero
// filesystem. Production code uses the OS filesystem; tests swap in memory
// or read-only layers.
type LocalProvider struct {
	fs afero.Fs
}

// NewLocalProvider creates a new LocalProvider. A nil fs selects the OS
// filesystem.
func NewLocalProvider(fs afero.Fs) *LocalProvider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalProvider{fs: fs}
}

// Fs exposes the underlying filesystem.
func (p *LocalProvider) Fs() afero.Fs { return p.fs }

func (p *LocalProvider) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.fs.Stat(path)
}

func (p *LocalProvider) List(ctx context.Context, path string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(p.fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", path)
	}
	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, entry)
	}
	return infos, nil
}

func (p *LocalProvider) Move(ctx context.Context, path string, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	target := filepath.Join(dir, filepath.Base(path))

	err := p.fs.Rename(path, target)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, unix.EXDEV) {
		return "", errors.Wrapf(err, "move %s to %s", path, dir)
	}

	// Different filesystem: copy then delete the source.
	if err := p.copyTree(ctx, path, target); err != nil {
		return "", errors.Wrapf(err, "copy %s to %s", path, dir)
	}
	if err := p.fs.RemoveAll(path); err != nil {
		return target, errors.Wrapf(err, "remove %s after copy", path)
	}
	return target, nil
}

func (p *LocalProvider) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := p.fs.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}
	if info.Mode().IsRegular() {
		return errors.Wrapf(p.fs.Remove(path), "delete file %s", path)
	}
	return errors.Wrapf(p.fs.RemoveAll(path), "delete directory %s", path)
}

func (p *LocalProvider) copyTree(ctx context.Context, src, dst string) error {
	return afero.Walk(p.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return p.fs.MkdirAll(target, info.Mode().Perm())
		}
		return p.copyFile(path, target, info.Mode().Perm())
	})
}

func (p *LocalProvider) copyFile(src, dst string, mode os.FileMode) error {
	in, err := p.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := p.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
