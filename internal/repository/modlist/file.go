package modlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domain "github.com/oshokin/mod-mender/internal/domain/modlist"
)

// Repository defines persistence operations for a mod list manifest.
type Repository interface {
	Load(ctx context.Context) (*domain.Manifest, error)
	Save(ctx context.Context, manifest *domain.Manifest) error
	Create(ctx context.Context, manifest *domain.Manifest) error
	Dir() string
}

const (
	// BackupPrefix is prepended to the manifest file name to form the backup name.
	BackupPrefix = "old_"

	// DefaultFilePermissions is the mode of freshly written manifest files.
	DefaultFilePermissions = 0o644
)

var (
	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")
	// ErrAlreadyExists is returned by Create when the target file is already present.
	ErrAlreadyExists = errors.New("manifest already exists")
)

// FileRepository persists a manifest as a JSON file on disk and keeps the
// previous version under BackupPrefix in the same directory.
type FileRepository struct {
	// path is the filesystem location of the manifest file.
	path string
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the manifest file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Dir returns the directory tracked file paths are relative to.
func (r *FileRepository) Dir() string {
	return filepath.Dir(r.path)
}

// BackupPath returns the location of the previous manifest version.
func (r *FileRepository) BackupPath() string {
	return filepath.Join(r.Dir(), BackupPrefix+filepath.Base(r.path))
}

// Load reads and parses the manifest.
func (r *FileRepository) Load(_ context.Context) (*domain.Manifest, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", r.path, ErrNotFound)
		}

		return nil, fmt.Errorf("read manifest %s: %w", r.path, err)
	}

	manifest, err := decode(contents)
	if err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", r.path, err)
	}

	return manifest, nil
}

// Save replaces the manifest on disk. The steps run in this order:
//  1. remove a stale backup,
//  2. rename the current manifest to the backup name,
//  3. write the new manifest under the original name.
//
// A crash between 2 and 3 leaves the data under the backup name only.
func (r *FileRepository) Save(_ context.Context, manifest *domain.Manifest) error {
	data, err := encode(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	backupPath := r.BackupPath()

	if err = os.Remove(backupPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale backup %s: %w", backupPath, err)
	}

	if err = os.Rename(r.path, backupPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("back up manifest to %s: %w", backupPath, err)
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write manifest %s (previous version kept at %s): %w", r.path, backupPath, err)
	}

	return nil
}

// Create writes a brand-new manifest and refuses to overwrite an existing file.
func (r *FileRepository) Create(_ context.Context, manifest *domain.Manifest) error {
	data, err := encode(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if dir := r.Dir(); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", r.path, ErrAlreadyExists)
		}

		return fmt.Errorf("create manifest %s: %w", r.path, err)
	}

	if _, err = file.Write(data); err != nil {
		_ = file.Close()

		return fmt.Errorf("write manifest %s: %w", r.path, err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close manifest %s: %w", r.path, err)
	}

	return nil
}
