package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/semmidev/odoodrive/internal/domain"
)

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
	warns  []string
}

func (l *recordingLogger) Infof(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Errorf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(template, args...))
}

func (l *recordingLogger) Warnf(template string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(template, args...))
}

// fakeSource writes content to the output path, optionally failing after
// having written a partial file.
type fakeSource struct {
	name    string
	format  string
	content []byte
	err     error
	partial bool
	calls   int
}

func (s *fakeSource) Backup(ctx context.Context, outputPath string) error {
	s.calls++
	if s.err != nil {
		if s.partial {
			_ = os.WriteFile(outputPath, []byte("partial"), 0644)
		}
		return s.err
	}
	return os.WriteFile(outputPath, s.content, 0644)
}

func (s *fakeSource) GetName() string   { return s.name }
func (s *fakeSource) GetFormat() string { return s.format }

type fakeVerifier struct {
	err   error
	paths []string
}

func (v *fakeVerifier) Verify(path string) error {
	v.paths = append(v.paths, path)
	return v.err
}

// memoryStorage is an in-memory folder with fault injection at every call.
type memoryStorage struct {
	mu        sync.Mutex
	files     []domain.RemoteFile
	clock     time.Time
	nextID    int
	uploadErr error
	listErr   error
	deleteErr map[string]error

	uploads     []string
	uploadSeen  []bool
	listCalls   int
	deleteCalls []string
}

func newMemoryStorage(start time.Time) *memoryStorage {
	return &memoryStorage{clock: start, deleteErr: map[string]error{}}
}

// seed adds n files created one hour apart, before any upload.
func (m *memoryStorage) seed(n int) {
	for i := 0; i < n; i++ {
		m.add(fmt.Sprintf("seed_%d.zip", i), 1)
	}
}

func (m *memoryStorage) add(name string, size int64) domain.RemoteFile {
	m.nextID++
	m.clock = m.clock.Add(time.Hour)
	f := domain.RemoteFile{
		ID:          fmt.Sprintf("id-%d", m.nextID),
		Name:        name,
		CreatedTime: m.clock,
		Size:        size,
	}
	m.files = append(m.files, f)
	return f
}

func (m *memoryStorage) Upload(ctx context.Context, localPath string, remoteName string) (domain.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads = append(m.uploads, remoteName)
	_, statErr := os.Stat(localPath)
	m.uploadSeen = append(m.uploadSeen, statErr == nil)

	if m.uploadErr != nil {
		return domain.RemoteFile{}, m.uploadErr
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return domain.RemoteFile{}, err
	}
	return m.add(remoteName, info.Size()), nil
}

func (m *memoryStorage) List(ctx context.Context) ([]domain.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}

	// Return newest first to prove callers sort.
	out := make([]domain.RemoteFile, 0, len(m.files))
	for i := len(m.files) - 1; i >= 0; i-- {
		out = append(out, m.files[i])
	}
	return out, nil
}

func (m *memoryStorage) Delete(ctx context.Context, file domain.RemoteFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls = append(m.deleteCalls, file.ID)
	if err := m.deleteErr[file.ID]; err != nil {
		return err
	}

	for i, f := range m.files {
		if f.ID == file.ID {
			m.files = append(m.files[:i], m.files[i+1:]...)
			return nil
		}
	}
	return errors.New("file not found")
}

func (m *memoryStorage) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f.ID)
	}
	return out
}
