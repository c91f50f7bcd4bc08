package services

import (
	"context"
	stderrors "errors"
	"path/filepath"

	"github.com/vytor/dominoscore/internal/errors"
	"github.com/vytor/dominoscore/internal/logger"
	"github.com/vytor/dominoscore/internal/store"
)

// BackupService copies the save documents to and from an export directory,
// byte for byte.
type BackupService interface {
	Export(ctx context.Context) ([]string, error)
	Import(ctx context.Context) ([]string, error)
}

type backupService struct {
	exportDir string
	documents []string
}

// NewBackupService creates a BackupService for the given document paths.
func NewBackupService(exportDir string, documents ...string) BackupService {
	return &backupService{exportDir: exportDir, documents: documents}
}

// Export returns the names of the documents copied. An empty result means
// there was nothing to export.
func (s *backupService) Export(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("backup")

	var copied []string
	for _, src := range s.documents {
		name := filepath.Base(src)
		ok, err := copyDocument(src, filepath.Join(s.exportDir, name))
		if err != nil {
			log.Error("failed to export %s: %v", name, err)
			return copied, errors.NewInternalError(err)
		}
		if ok {
			copied = append(copied, name)
		}
	}
	log.Info("exported %d documents to %s", len(copied), s.exportDir)
	return copied, nil
}

// Import returns the names of the documents restored. An empty result means
// the export directory held nothing to import.
func (s *backupService) Import(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("backup")

	var copied []string
	for _, dst := range s.documents {
		name := filepath.Base(dst)
		ok, err := copyDocument(filepath.Join(s.exportDir, name), dst)
		if err != nil {
			log.Error("failed to import %s: %v", name, err)
			return copied, errors.NewInternalError(err)
		}
		if ok {
			copied = append(copied, name)
		}
	}
	log.Info("imported %d documents from %s", len(copied), s.exportDir)
	return copied, nil
}

// copyDocument reports false when src is missing or empty.
func copyDocument(src, dst string) (bool, error) {
	data, err := store.Read(src)
	switch {
	case stderrors.Is(err, store.ErrMissing), stderrors.Is(err, store.ErrEmpty):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := store.WriteFile(dst, data); err != nil {
		return false, err
	}
	return true, nil
}
