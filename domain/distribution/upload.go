package distribution

import (
	"path/filepath"
	"strings"
)

// UploadRequest contains the parameters needed to upload a file to Google Drive
type UploadRequest struct {
	LocalPath string // Full path to the local file
	FileName  string // Target filename in Google Drive
	FolderID  string // Target folder ID in Google Drive
	MimeType  string // MIME type of the file
}

// UploadResult contains the result of a successful upload
type UploadResult struct {
	FileID   string // Google Drive file ID
	FileName string // Name of the uploaded file
	WebURL   string // URL to open the file in a browser
	Size     int64  // Size of the uploaded file in bytes
}

// MIME type constants for the files the pipeline produces
const (
	MimeTypePNG = "image/png"
	MimeTypeMP4 = "video/mp4"
)

// MimeTypeFor guesses the MIME type from a file extension
func MimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return MimeTypePNG
	case ".mp4":
		return MimeTypeMP4
	default:
		return "application/octet-stream"
	}
}

// SyncResult lists what a folder sync did
type SyncResult struct {
	Uploaded []UploadResult
	// Skipped names files already present in the remote folder
	Skipped []string
}
