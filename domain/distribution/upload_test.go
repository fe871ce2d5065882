package distribution

import "testing"

func TestMimeTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"unknown/pokemon/20240101120000_1.png", MimeTypePNG},
		{"clips/abc.MP4", MimeTypeMP4},
		{"notes.txt", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := MimeTypeFor(tt.path); got != tt.want {
			t.Errorf("MimeTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFolderURL(t *testing.T) {
	want := "https://drive.google.com/drive/folders/abc"
	if got := FolderURL("abc"); got != want {
		t.Errorf("FolderURL() = %q, want %q", got, want)
	}
}
