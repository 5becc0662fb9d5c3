package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/semmidev/odoodrive/internal/domain"
)

type LocalStorage struct {
	basePath string
	format   string
}

func NewLocal(basePath, format string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, format: format}, nil
}

func (l *LocalStorage) Upload(ctx context.Context, localPath string, remoteName string) (domain.RemoteFile, error) {
	destPath := l.GetPath(remoteName)
	if sameFile(localPath, destPath) {
		return domain.RemoteFile{}, fmt.Errorf("refusing to copy %s onto itself", destPath)
	}

	source, err := os.Open(localPath)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to open source: %w", err)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to create dest: %w", err)
	}

	size, err := dest.ReadFrom(source)
	if err != nil {
		dest.Close()
		os.Remove(destPath)
		return domain.RemoteFile{}, fmt.Errorf("failed to copy: %w", err)
	}
	if err := dest.Close(); err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to close dest: %w", err)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to stat dest: %w", err)
	}

	return domain.RemoteFile{
		ID:          remoteName,
		Name:        remoteName,
		CreatedTime: creationTime(remoteName, info.ModTime()),
		Size:        size,
	}, nil
}

// List returns the archives in the directory in ascending creation order.
func (l *LocalStorage) List(ctx context.Context) ([]domain.RemoteFile, error) {
	entries, err := os.ReadDir(l.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []domain.RemoteFile
	for _, entry := range entries {
		if entry.IsDir() || !hasArchiveExt(entry.Name(), l.format) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info for %s: %w", entry.Name(), err)
		}

		files = append(files, domain.RemoteFile{
			ID:          entry.Name(),
			Name:        entry.Name(),
			CreatedTime: creationTime(entry.Name(), info.ModTime()),
			Size:        info.Size(),
		})
	}

	domain.SortByCreation(files)
	return files, nil
}

func (l *LocalStorage) Delete(ctx context.Context, file domain.RemoteFile) error {
	if err := os.Remove(l.GetPath(file.ID)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalStorage) GetPath(filename string) string {
	return filepath.Join(l.basePath, filepath.Base(filename))
}
