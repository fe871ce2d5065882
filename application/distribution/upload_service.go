package distribution

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"poke-battle-logger/domain/distribution"
)

// SyncService mirrors the local unknown-sample directory into a Drive folder
// so crops can be labeled remotely
type SyncService struct {
	driveClient distribution.DriveClient
	folderID    string
	root        string
	fsys        fs.FS
	output      io.Writer
}

// NewSyncService creates a new sync service for the directory root
func NewSyncService(client distribution.DriveClient, folderID, root string, output io.Writer) *SyncService {
	if output == nil {
		output = io.Discard
	}
	return &SyncService{
		driveClient: client,
		folderID:    folderID,
		root:        root,
		fsys:        dirFS(root),
		output:      output,
	}
}

// FolderURL returns the browser URL of the target folder
func (s *SyncService) FolderURL() string {
	return distribution.FolderURL(s.folderID)
}

// RemoteName flattens a sample path relative to the root: "pokemon/x.png"
// becomes "pokemon_x.png"
func RemoteName(rel string) string {
	return strings.ReplaceAll(path.Clean(rel), "/", "_")
}

// Sync uploads every PNG not yet present in the folder
func (s *SyncService) Sync(ctx context.Context) (*distribution.SyncResult, error) {
	if s.folderID == "" {
		return nil, fmt.Errorf("no unknown-sample folder configured")
	}

	var samples []string
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && distribution.MimeTypeFor(p) == distribution.MimeTypePNG {
			samples = append(samples, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}

	result := &distribution.SyncResult{}
	for _, rel := range samples {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := RemoteName(rel)
		existing, err := s.driveClient.FindFileByName(ctx, s.folderID, name)
		if err != nil {
			return result, fmt.Errorf("failed to check for existing file: %w", err)
		}
		if existing != nil {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		uploaded, err := s.driveClient.Upload(ctx, distribution.UploadRequest{
			LocalPath: filepath.Join(s.root, filepath.FromSlash(rel)),
			FileName:  name,
			FolderID:  s.folderID,
			MimeType:  distribution.MimeTypePNG,
		})
		if err != nil {
			return result, fmt.Errorf("failed to upload %s: %w", name, err)
		}
		fmt.Fprintf(s.output, "      Uploaded %s (%.1f KB)\n", name, float64(uploaded.Size)/1024)
		result.Uploaded = append(result.Uploaded, *uploaded)
	}

	return result, nil
}
