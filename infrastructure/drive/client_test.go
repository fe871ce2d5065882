package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"poke-battle-logger/domain/distribution"

	"google.golang.org/api/drive/v3"
)

// mockDriveService is a mock implementation for testing
type mockDriveService struct {
	files      []*drive.File
	shouldFail bool
	failError  error
	queries    []string
	created    []*drive.File
	uploaded   []string
}

func (m *mockDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	m.queries = append(m.queries, query)
	if m.shouldFail {
		return nil, m.failError
	}
	return m.files, nil
}

func (m *mockDriveService) CreateFile(ctx context.Context, file *drive.File, media io.Reader) (*drive.File, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	b, err := io.ReadAll(media)
	if err != nil {
		return nil, err
	}
	m.created = append(m.created, file)
	m.uploaded = append(m.uploaded, string(b))
	return &drive.File{
		Id:          "uploaded-file-id",
		Name:        file.Name,
		Size:        int64(len(b)),
		WebViewLink: "https://drive.google.com/file/d/uploaded-file-id/view",
	}, nil
}

func TestClient_ListFiles(t *testing.T) {
	testTime := time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mock      *mockDriveService
		folderID  string
		wantCount int
		wantErr   bool
		errMsg    string
	}{
		{
			name: "lists files successfully",
			mock: &mockDriveService{
				files: []*drive.File{
					{
						Id:          "file-1",
						Name:        "20251228100000_1.png",
						MimeType:    "image/png",
						Size:        2048,
						CreatedTime: testTime.Format(time.RFC3339),
					},
					{
						Id:          "file-2",
						Name:        "20251228100000_2.png",
						MimeType:    "image/png",
						Size:        4096,
						CreatedTime: testTime.Format(time.RFC3339),
					},
				},
			},
			folderID:  "test-folder-id",
			wantCount: 2,
		},
		{
			name:      "returns empty list for empty folder",
			mock:      &mockDriveService{files: []*drive.File{}},
			folderID:  "empty-folder-id",
			wantCount: 0,
		},
		{
			name: "handles API error",
			mock: &mockDriveService{
				shouldFail: true,
				failError:  fmt.Errorf("googleapi: Error 403: permission denied"),
			},
			folderID: "test-folder-id",
			wantErr:  true,
			errMsg:   "failed to list files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), "", WithDriveService(tt.mock))
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			files, err := client.ListFiles(context.Background(), tt.folderID)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ListFiles() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ListFiles() error = %v, want containing %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListFiles() unexpected error = %v", err)
			}
			if len(files) != tt.wantCount {
				t.Errorf("ListFiles() returned %d files, want %d", len(files), tt.wantCount)
			}
			if tt.wantCount > 0 && !files[0].CreatedTime.Equal(testTime) {
				t.Errorf("CreatedTime = %v, want %v", files[0].CreatedTime, testTime)
			}
		})
	}
}

func TestClient_FindFileByName(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := &mockDriveService{files: []*drive.File{{Id: "f1", Name: "a.png", Size: 10}}}
		client, _ := NewClient(context.Background(), "", WithDriveService(mock))

		info, err := client.FindFileByName(context.Background(), "folder", "a.png")
		if err != nil {
			t.Fatalf("FindFileByName() error = %v", err)
		}
		if info == nil || info.ID != "f1" {
			t.Fatalf("FindFileByName() = %+v, want f1", info)
		}
		want := "'folder' in parents and name = 'a.png' and trashed = false"
		if mock.queries[0] != want {
			t.Errorf("query = %q, want %q", mock.queries[0], want)
		}
	})

	t.Run("missing", func(t *testing.T) {
		client, _ := NewClient(context.Background(), "", WithDriveService(&mockDriveService{}))
		info, err := client.FindFileByName(context.Background(), "folder", "a.png")
		if err != nil {
			t.Fatalf("FindFileByName() error = %v", err)
		}
		if info != nil {
			t.Errorf("FindFileByName() = %+v, want nil", info)
		}
	})

	t.Run("quotes are escaped", func(t *testing.T) {
		mock := &mockDriveService{}
		client, _ := NewClient(context.Background(), "", WithDriveService(mock))
		client.FindFileByName(context.Background(), "folder", "farfetch'd.png")
		if !strings.Contains(mock.queries[0], `farfetch\'d.png`) {
			t.Errorf("query = %q, want escaped quote", mock.queries[0])
		}
	})
}

func TestClient_Upload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "20251228100000_1.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	mock := &mockDriveService{}
	client, _ := NewClient(context.Background(), "", WithDriveService(mock))

	result, err := client.Upload(context.Background(), distribution.UploadRequest{
		LocalPath: path,
		FileName:  "pokemon_20251228100000_1.png",
		FolderID:  "folder",
		MimeType:  distribution.MimeTypePNG,
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.Size != int64(len("png-bytes")) {
		t.Errorf("Size = %d, want %d", result.Size, len("png-bytes"))
	}
	if got := mock.created[0].Parents; len(got) != 1 || got[0] != "folder" {
		t.Errorf("Parents = %v, want [folder]", got)
	}
	if mock.uploaded[0] != "png-bytes" {
		t.Errorf("uploaded body = %q", mock.uploaded[0])
	}

	if _, err := client.Upload(context.Background(), distribution.UploadRequest{LocalPath: filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("Upload() of missing file expected error")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-12-28T10:00:00Z", time.Date(2025, 12, 28, 10, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"not-a-time", time.Time{}},
	}

	for _, tt := range tests {
		if got := parseTime(tt.input); !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
