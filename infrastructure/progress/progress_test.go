package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"poke-battle-logger/domain/progress"
	"poke-battle-logger/infrastructure/storage"

	"github.com/gorilla/websocket"
)

func TestWriterReporter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterReporter(&buf)

	w.Report(context.Background(), progress.Update{VideoID: "v", Stage: progress.StageProcessing, Percent: 7, Message: "frame 70/1000"})
	w.Report(context.Background(), progress.Update{VideoID: "v", Stage: progress.StageDone, Percent: 100})

	want := "      Processing   7% frame 70/1000\n      Processing Done 100%\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestHub_ReportWithoutClients(t *testing.T) {
	hub := NewHub()
	if err := hub.Report(context.Background(), progress.Update{VideoID: "v", Percent: 10}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	u, ok := hub.Latest("v")
	if !ok || u.Percent != 10 {
		t.Errorf("Latest() = %+v, %v", u, ok)
	}
	if _, ok := hub.Latest("other"); ok {
		t.Error("Latest() found an unknown video")
	}
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub(WithBuffer(1))
	c := &client{send: make(chan progress.Update, 1)}
	hub.mu.Lock()
	hub.clients[c] = struct{}{}
	hub.mu.Unlock()

	for i := 0; i < 3; i++ {
		hub.Report(context.Background(), progress.Update{VideoID: "v", Percent: i})
	}
	if hub.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", hub.Dropped())
	}
	if u := <-c.send; u.Percent != 0 {
		t.Errorf("queued update = %+v, want the first", u)
	}
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub has %d clients, want %d", hub.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_StreamsToWebsocket(t *testing.T) {
	hub := NewHub()
	server := httptest.NewServer(NewRouter(hub, nil))
	defer server.Close()

	all := dial(t, server, "")
	filtered := dial(t, server, "?video_id=b")
	waitForClients(t, hub, 2)

	hub.Report(context.Background(), progress.Update{VideoID: "a", Stage: progress.StageProcessing, Percent: 50})
	hub.Report(context.Background(), progress.Update{VideoID: "b", Stage: progress.StageDone, Percent: 100})

	var got progress.Update
	all.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := all.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.VideoID != "a" || got.Percent != 50 {
		t.Errorf("first update = %+v", got)
	}

	filtered.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := filtered.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.VideoID != "b" || got.Stage != progress.StageDone {
		t.Errorf("filtered update = %+v", got)
	}

	all.Close()
	waitForClients(t, hub, 1)
}

func TestHub_SendsLatestOnSubscribe(t *testing.T) {
	hub := NewHub()
	hub.Report(context.Background(), progress.Update{VideoID: "v", Stage: progress.StageProcessing, Percent: 42})

	server := httptest.NewServer(NewRouter(hub, nil))
	defer server.Close()

	conn := dial(t, server, "?video_id=v")
	var got progress.Update
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Percent != 42 {
		t.Errorf("snapshot = %+v", got)
	}
}

type mockStatusStore struct {
	statuses map[string]*storage.Status
}

func (m *mockStatusStore) Get(ctx context.Context, videoID string) (*storage.Status, error) {
	if s, ok := m.statuses[videoID]; ok {
		return s, nil
	}
	return nil, storage.ErrStatusNotFound
}

func TestRouter_Status(t *testing.T) {
	hub := NewHub()
	hub.Report(context.Background(), progress.Update{VideoID: "live", Stage: progress.StageProcessing, Percent: 5})
	store := &mockStatusStore{statuses: map[string]*storage.Status{
		"done": {VideoID: "done", Stage: progress.StageDone, Percent: 100},
	}}
	router := NewRouter(hub, store)

	tests := []struct {
		path       string
		wantStatus int
		wantStage  progress.Stage
	}{
		{"/status/live", http.StatusOK, progress.StageProcessing},
		{"/status/done", http.StatusOK, progress.StageDone},
		{"/status/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body statusResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Stage != tt.wantStage {
				t.Errorf("stage = %s, want %s", body.Stage, tt.wantStage)
			}
		})
	}
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(NewHub(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
