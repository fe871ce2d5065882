package video

import (
	"strings"
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timestamp
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid timestamp",
			input: "01:30:45",
			want:  Timestamp{Hours: 1, Minutes: 30, Seconds: 45},
		},
		{
			name:  "large hours value",
			input: "99:00:00",
			want:  Timestamp{Hours: 99},
		},
		{
			name:    "missing leading zero",
			input:   "1:30:45",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "minutes too high",
			input:   "01:60:00",
			wantErr: true,
			errMsg:  "minutes must be 0-59",
		},
		{
			name:    "seconds too high",
			input:   "01:30:60",
			wantErr: true,
			errMsg:  "seconds must be 0-59",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want it to contain %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromFrame(t *testing.T) {
	tests := []struct {
		frame int
		want  string
	}{
		{0, "00:00:00"},
		{29, "00:00:00"},
		{30, "00:00:01"},
		{1800, "00:01:00"},
		{108000 + 45, "01:00:01"},
	}

	for _, tt := range tests {
		if got := FromFrame(tt.frame).String(); got != tt.want {
			t.Errorf("FromFrame(%d) = %s, want %s", tt.frame, got, tt.want)
		}
	}
}

func TestTimestamp_Frame(t *testing.T) {
	ts := Timestamp{Minutes: 2, Seconds: 3}
	if ts.Frame() != 123*FPS {
		t.Errorf("Frame() = %d, want %d", ts.Frame(), 123*FPS)
	}
	if FromSeconds(-5) != (Timestamp{}) {
		t.Error("negative seconds should clamp to zero")
	}
}
