//go:build manual

package drive

import (
	"context"
	"os"
	"testing"
)

// Run with: UNKNOWN_FOLDER_ID=... go test -tags=manual -v ./infrastructure/drive/... -run TestUnknownFolder
func TestUnknownFolder_ListAndFind(t *testing.T) {
	credentialsPath := os.Getenv("GOOGLE_CREDENTIALS")
	if credentialsPath == "" {
		credentialsPath = "../../credentials.json"
	}
	folderID := os.Getenv("UNKNOWN_FOLDER_ID")

	if _, err := os.Stat(credentialsPath); err != nil {
		t.Skipf("no service account credentials at %s", credentialsPath)
	}
	if folderID == "" {
		t.Skip("UNKNOWN_FOLDER_ID not set")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, credentialsPath)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	files, err := client.ListFiles(ctx, folderID)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	t.Logf("%d crops waiting for a label", len(files))

	for _, f := range files {
		t.Logf("  %s (%d bytes)", f.Name, f.Size)
		found, err := client.FindFileByName(ctx, folderID, f.Name)
		if err != nil {
			t.Fatalf("FindFileByName(%q) error = %v", f.Name, err)
		}
		if found == nil || found.ID != f.ID {
			t.Errorf("FindFileByName(%q) = %+v, want id %s", f.Name, found, f.ID)
		}
	}

	missing, err := client.FindFileByName(ctx, folderID, "no-such-crop.png")
	if err != nil {
		t.Fatalf("FindFileByName() error = %v", err)
	}
	if missing != nil {
		t.Errorf("FindFileByName() = %+v for a missing crop", missing)
	}
}
