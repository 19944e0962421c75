// Package localdir serves the input directory and the quarantine holding area.
package localdir

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

type Inbox struct {
	inputDir      string
	quarantineDir string
}

func New(inputDir, quarantineDir string) (*Inbox, error) {
	if inputDir == "" || quarantineDir == "" {
		return nil, fmt.Errorf("input and quarantine directories are required")
	}
	return &Inbox{inputDir: inputDir, quarantineDir: quarantineDir}, nil
}

// List returns the regular files of the input directory in directory order.
func (b *Inbox) List(ctx context.Context) ([]domain.InputImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(b.inputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	images := make([]domain.InputImage, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		images = append(images, domain.InputImage{
			Name: entry.Name(),
			Path: filepath.Join(b.inputDir, entry.Name()),
		})
	}
	return images, nil
}

// Quarantine moves name from the input directory into the holding area, replacing
// any file already there. A name with no file behind it is an error.
func (b *Inbox) Quarantine(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(b.quarantineDir, 0o755); err != nil {
		return fmt.Errorf("create quarantine dir: %w", err)
	}

	src := filepath.Join(b.inputDir, name)
	dst := filepath.Join(b.quarantineDir, name)
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("move %s: %w", name, err)
	}
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
