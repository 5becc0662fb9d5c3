package domain

import "context"

// Storage is a remote backup target scoped to a single folder, bucket prefix
// or directory.
type Storage interface {
	Upload(ctx context.Context, localPath string, remoteName string) (RemoteFile, error)
	List(ctx context.Context) ([]RemoteFile, error)
	Delete(ctx context.Context, file RemoteFile) error
}

type Notifier interface {
	Notify(ctx context.Context, report *Report) error
}
