package distribution

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"poke-battle-logger/domain/distribution"
)

type mockDriveClient struct {
	existing  map[string]bool
	uploads   []distribution.UploadRequest
	uploadErr error
}

func (m *mockDriveClient) ListFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	return nil, nil
}

func (m *mockDriveClient) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	if m.existing[name] {
		return &distribution.FileInfo{ID: "id-" + name, Name: name}, nil
	}
	return nil, nil
}

func (m *mockDriveClient) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.uploads = append(m.uploads, req)
	return &distribution.UploadResult{FileID: "new", FileName: req.FileName, Size: 2048}, nil
}

func withFS(t *testing.T, fsys fs.FS) {
	t.Helper()
	orig := dirFS
	dirFS = func(string) fs.FS { return fsys }
	t.Cleanup(func() { dirFS = orig })
}

func TestSyncService_Sync(t *testing.T) {
	withFS(t, fstest.MapFS{
		"pokemon/20250101120000_1.png":     {Data: []byte("a")},
		"pokemon/20250101120000_2.png":     {Data: []byte("b")},
		"name_window/20250101120000_1.png": {Data: []byte("c")},
		"pokemon/notes.txt":                {Data: []byte("ignored")},
	})

	client := &mockDriveClient{existing: map[string]bool{"pokemon_20250101120000_1.png": true}}
	var out strings.Builder
	svc := NewSyncService(client, "folder", "/data/unknown", &out)

	result, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if len(result.Uploaded) != 2 {
		t.Fatalf("Uploaded = %d, want 2", len(result.Uploaded))
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "pokemon_20250101120000_1.png" {
		t.Errorf("Skipped = %v", result.Skipped)
	}

	names := map[string]string{}
	for _, u := range client.uploads {
		names[u.FileName] = u.LocalPath
		if u.FolderID != "folder" || u.MimeType != distribution.MimeTypePNG {
			t.Errorf("upload request = %+v", u)
		}
	}
	if _, ok := names["name_window_20250101120000_1.png"]; !ok {
		t.Errorf("name window sample not uploaded: %v", names)
	}
	if !strings.Contains(out.String(), "Uploaded pokemon_20250101120000_2.png") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSyncService_Errors(t *testing.T) {
	withFS(t, fstest.MapFS{"pokemon/a.png": {Data: []byte("a")}})

	t.Run("no folder", func(t *testing.T) {
		svc := NewSyncService(&mockDriveClient{}, "", "/data", nil)
		if _, err := svc.Sync(context.Background()); err == nil {
			t.Error("Sync() expected error without folder")
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewSyncService(&mockDriveClient{uploadErr: boom}, "folder", "/data", nil)
		if _, err := svc.Sync(context.Background()); !errors.Is(err, boom) {
			t.Errorf("Sync() error = %v, want %v", err, boom)
		}
	})
}

func TestRemoteName(t *testing.T) {
	if got := RemoteName("pokemon/x.png"); got != "pokemon_x.png" {
		t.Errorf("RemoteName() = %q", got)
	}
}
