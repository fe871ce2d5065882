package drive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "token.json")
	expiry := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	want := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", Expiry: expiry}

	if err := saveToken(file, want); err != nil {
		t.Fatalf("saveToken() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}

	got, err := loadToken(file)
	if err != nil {
		t.Fatalf("loadToken() error = %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(expiry) {
		t.Errorf("loadToken() = %+v, want %+v", got, want)
	}
}

func TestLoadToken_Missing(t *testing.T) {
	if _, err := loadToken(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("loadToken() of missing file expected error")
	}
}
