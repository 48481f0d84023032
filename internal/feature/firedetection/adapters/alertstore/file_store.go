// Package alertstore は注釈付きアラート画像をファイルシステムに保存します。
package alertstore

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/usecase"
)

// Quality はアラートJPEGの品質です。
const Quality = 90

// FileStore はディレクトリにJPEGを書き出すAlertStoreの実装です。
type FileStore struct {
	dir string
}

var _ usecase.AlertStore = (*FileStore)(nil)

// NewFileStore はdirを作成してFileStoreを返します。
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create alerts dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save はimgを<dir>/<name>.jpgに書き込み、そのパスを返します。
// nameが空の場合はUUIDを使います。書き込みは一時ファイル経由で行い、途中の画像は公開しません。
func (s *FileStore) Save(ctx context.Context, name string, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if img == nil {
		return "", fmt.Errorf("%w: nil alert image", domain.ErrInvalidImage)
	}
	if name == "" {
		name = uuid.NewString()
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid alert name %q", domain.ErrInvalidArgument, name)
	}

	path := filepath.Join(s.dir, name+".jpg")
	tmp, err := os.CreateTemp(s.dir, ".alert-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: Quality}); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to encode alert image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close alert image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store alert image: %w", err)
	}
	return path, nil
}
