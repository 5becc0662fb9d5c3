package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/semmidev/odoodrive/internal/config"
	"github.com/semmidev/odoodrive/internal/domain"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const listFields = "nextPageToken, files(id, name, createdTime, size)"

// GDriveStorage keeps backups in a single Drive folder. The Drive service is
// created on first use, so credential problems surface from Upload rather
// than from construction.
type GDriveStorage struct {
	folderID string
	format   string
	mimeType string
	connect  func(ctx context.Context) (*drive.Service, error)

	mu      sync.Mutex
	service *drive.Service
}

// NewGDrive authenticates with the service-account key at
// {credentials_path}/credentials.json using the full drive scope.
func NewGDrive(cfg *config.UploadTarget, format string) *GDriveStorage {
	keyFile := cfg.CredentialsFilePath()

	return newGDrive(cfg.FolderID, format, func(ctx context.Context) (*drive.Service, error) {
		key, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read service account key: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(key, drive.DriveScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}

		service, err := drive.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(context.Background())))
		if err != nil {
			return nil, fmt.Errorf("failed to create drive service: %w", err)
		}
		return service, nil
	})
}

// NewGDriveWithOptions builds the Drive service from explicit client options,
// e.g. a custom endpoint.
func NewGDriveWithOptions(folderID, format string, opts ...option.ClientOption) *GDriveStorage {
	return newGDrive(folderID, format, func(ctx context.Context) (*drive.Service, error) {
		service, err := drive.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create drive service: %w", err)
		}
		return service, nil
	})
}

func newGDrive(folderID, format string, connect func(context.Context) (*drive.Service, error)) *GDriveStorage {
	return &GDriveStorage{
		folderID: folderID,
		format:   format,
		mimeType: domain.MimeType(format),
		connect:  connect,
	}
}

func (g *GDriveStorage) client(ctx context.Context) (*drive.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.service != nil {
		return g.service, nil
	}

	service, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}
	g.service = service
	return service, nil
}

func (g *GDriveStorage) Upload(ctx context.Context, localPath string, remoteName string) (domain.RemoteFile, error) {
	service, err := g.client(ctx)
	if err != nil {
		return domain.RemoteFile{}, err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileMetadata := &drive.File{
		Name:     remoteName,
		Parents:  []string{g.folderID},
		MimeType: g.mimeType,
	}

	created, err := service.Files.Create(fileMetadata).
		Media(file).
		Fields("id, name, createdTime, size").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return toRemoteFile(created), nil
}

// List returns the archives in the folder in ascending creation order.
// Files without the archive extension are skipped, since the dump MIME type
// matches any binary file.
func (g *GDriveStorage) List(ctx context.Context) ([]domain.RemoteFile, error) {
	service, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	var files []domain.RemoteFile
	err = service.Files.List().
		Q(g.listQuery()).
		Spaces("drive").
		Fields(listFields).
		OrderBy("createdTime").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if !hasArchiveExt(f.Name, g.format) {
					continue
				}
				files = append(files, toRemoteFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	domain.SortByCreation(files)
	return files, nil
}

func (g *GDriveStorage) Delete(ctx context.Context, file domain.RemoteFile) error {
	service, err := g.client(ctx)
	if err != nil {
		return err
	}

	if err := service.Files.Delete(file.ID).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", file.Name, err)
	}

	return nil
}

func (g *GDriveStorage) listQuery() string {
	return fmt.Sprintf("'%s' in parents and mimeType='%s' and trashed=false",
		queryEscaper.Replace(g.folderID), queryEscaper.Replace(g.mimeType))
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func toRemoteFile(f *drive.File) domain.RemoteFile {
	created, _ := time.Parse(time.RFC3339, f.CreatedTime)
	return domain.RemoteFile{
		ID:          f.Id,
		Name:        f.Name,
		CreatedTime: created,
		Size:        f.Size,
	}
}
