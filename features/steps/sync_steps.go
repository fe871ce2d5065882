//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"poke-battle-logger/cmd"
	"poke-battle-logger/domain/distribution"

	"github.com/cucumber/godog"
)

// memoryDrive keeps uploaded files per folder
type memoryDrive struct {
	files map[string][]distribution.FileInfo
	next  int
}

func newMemoryDrive() *memoryDrive {
	return &memoryDrive{files: make(map[string][]distribution.FileInfo)}
}

func (d *memoryDrive) ListFiles(ctx context.Context, folderID string) ([]distribution.FileInfo, error) {
	return d.files[folderID], nil
}

func (d *memoryDrive) FindFileByName(ctx context.Context, folderID, name string) (*distribution.FileInfo, error) {
	for _, f := range d.files[folderID] {
		if f.Name == name {
			found := f
			return &found, nil
		}
	}
	return nil, nil
}

func (d *memoryDrive) Upload(ctx context.Context, req distribution.UploadRequest) (*distribution.UploadResult, error) {
	info, err := os.Stat(req.LocalPath)
	if err != nil {
		return nil, err
	}
	d.next++
	id := fmt.Sprintf("file-%d", d.next)
	d.files[req.FolderID] = append(d.files[req.FolderID], distribution.FileInfo{
		ID:       id,
		Name:     req.FileName,
		MimeType: req.MimeType,
		Size:     info.Size(),
	})
	return &distribution.UploadResult{FileID: id, FileName: req.FileName, Size: info.Size()}, nil
}

var _ distribution.DriveClient = (*memoryDrive)(nil)

type syncContext struct {
	tempDir string
	drive   *memoryDrive
	result  *commandResult
}

var SharedSyncContext = &syncContext{}

func InitializeSyncScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSyncContext
	testCtx.result = SharedResult

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "sync-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.drive = newMemoryDrive()
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^unknown crops "([^"]*)" on disk$`, testCtx.unknownCropsOnDisk)
	ctx.Step(`^the Drive folder "([^"]*)" already holds "([^"]*)"$`, testCtx.theDriveFolderAlreadyHolds)
	ctx.Step(`^I sync unknown crops to folder "([^"]*)"$`, testCtx.iSyncUnknownCropsToFolder)
	ctx.Step(`^the Drive folder "([^"]*)" should hold (\d+) files?$`, testCtx.theDriveFolderShouldHold)
	ctx.Step(`^the Drive folder "([^"]*)" should hold "([^"]*)"$`, testCtx.theDriveFolderShouldHoldFile)
}

func (c *syncContext) unknownCropsOnDisk(list string) error {
	for _, rel := range splitNames(list) {
		p := filepath.Join(c.tempDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte("crop"), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (c *syncContext) theDriveFolderAlreadyHolds(folderID, name string) error {
	c.drive.files[folderID] = append(c.drive.files[folderID], distribution.FileInfo{ID: "existing", Name: name})
	return nil
}

func (c *syncContext) iSyncUnknownCropsToFolder(folderID string) error {
	c.result.run(func() error {
		return cmd.RunSyncUnknownWithDependencies(context.Background(), c.drive, folderID, c.tempDir, c.result.output)
	})
	return nil
}

func (c *syncContext) theDriveFolderShouldHold(folderID string, n int) error {
	if got := len(c.drive.files[folderID]); got != n {
		return fmt.Errorf("expected %d files in %s, got %d", n, folderID, got)
	}
	return nil
}

func (c *syncContext) theDriveFolderShouldHoldFile(folderID, name string) error {
	f, _ := c.drive.FindFileByName(context.Background(), folderID, name)
	if f == nil {
		return fmt.Errorf("expected %s in %s, found %+v", name, folderID, c.drive.files[folderID])
	}
	return nil
}
