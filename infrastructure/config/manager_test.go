package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestManager(t *testing.T) (*ConfigManager, *Config, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{
		Trainers: map[string]TrainerConfig{
			"satoshi": {ID: 1, Name: "Satoshi", Email: "ash@example.com"},
			"shigeru": {ID: 2, Name: "Shigeru", Email: "gary@example.com"},
		},
	}
	return NewConfigManager(cfg, path), cfg, path
}

func TestConfigManager_AddTrainer(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		id      int64
		tname   string
		email   string
		wantErr error
		anyErr  bool
	}{
		{name: "adds trainer", key: "Kasumi", id: 3, tname: "Kasumi", email: "misty@example.com"},
		{name: "email optional", key: "takeshi", id: 4, tname: "Takeshi"},
		{name: "duplicate key", key: "satoshi", id: 9, tname: "Other", wantErr: ErrDuplicateKey},
		{name: "duplicate id", key: "other", id: 1, tname: "Other", wantErr: ErrDuplicateID},
		{name: "bad email", key: "other", id: 9, tname: "Other", email: "nope", wantErr: ErrInvalidEmail},
		{name: "missing key", id: 9, tname: "Other", anyErr: true},
		{name: "non positive id", key: "other", id: 0, tname: "Other", anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, path := newTestManager(t)
			err := m.AddTrainer(tt.key, tt.id, tt.tname, tt.email)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddTrainer() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.anyErr:
				if err == nil {
					t.Fatal("AddTrainer() expected error")
				}
				return
			case err != nil:
				t.Fatalf("AddTrainer() error = %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			got, ok := loaded.Trainers[tt.key]
			if !ok {
				// keys are stored lower-cased
				got, ok = loaded.Trainers["kasumi"]
			}
			if !ok || got.ID != tt.id {
				t.Errorf("saved trainers = %+v", loaded.Trainers)
			}
		})
	}
}

func TestConfigManager_FindTrainer(t *testing.T) {
	m, cfg, _ := newTestManager(t)
	cfg.Trainers["red"] = TrainerConfig{ID: 3, Name: "Satoshi"}

	tests := []struct {
		query   string
		wantKey string
		wantErr error
	}{
		{query: "shigeru", wantKey: "shigeru"},
		{query: "SATOSHI", wantKey: "satoshi"},
		{query: "2", wantKey: "shigeru"},
		{query: "3", wantKey: "red"},
		{query: "Shigeru", wantKey: "shigeru"},
		{query: "nobody", wantErr: ErrTrainerNotFound},
		{query: "", wantErr: ErrTrainerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := m.FindTrainer(tt.query)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FindTrainer(%q) error = %v, want %v", tt.query, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindTrainer(%q) error = %v", tt.query, err)
			}
			if got.Key != tt.wantKey {
				t.Errorf("FindTrainer(%q) = %q, want %q", tt.query, got.Key, tt.wantKey)
			}
		})
	}
}

func TestConfigManager_FindTrainer_Ambiguous(t *testing.T) {
	m, cfg, _ := newTestManager(t)
	cfg.Trainers["red"] = TrainerConfig{ID: 3, Name: "Shigeru"}
	cfg.Trainers["blue"] = TrainerConfig{ID: 4, Name: "shigeru"}
	delete(cfg.Trainers, "shigeru")

	if _, err := m.FindTrainer("Shigeru"); !errors.Is(err, ErrAmbiguousTrainer) {
		t.Errorf("FindTrainer() error = %v, want %v", err, ErrAmbiguousTrainer)
	}
}

func TestConfigManager_UpdateAndRemoveTrainer(t *testing.T) {
	m, cfg, _ := newTestManager(t)

	if err := m.UpdateTrainer("satoshi", "", "red@example.com"); err != nil {
		t.Fatalf("UpdateTrainer() error = %v", err)
	}
	if got := cfg.Trainers["satoshi"]; got.Name != "Satoshi" || got.Email != "red@example.com" {
		t.Errorf("updated trainer = %+v", got)
	}
	if err := m.UpdateTrainer("satoshi", "", "bad"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("UpdateTrainer() error = %v, want %v", err, ErrInvalidEmail)
	}

	if err := m.RemoveTrainer("SATOSHI"); err != nil {
		t.Fatalf("RemoveTrainer() error = %v", err)
	}
	if err := m.RemoveTrainer("satoshi"); !errors.Is(err, ErrTrainerNotFound) {
		t.Errorf("RemoveTrainer() twice error = %v, want %v", err, ErrTrainerNotFound)
	}
	if got := m.ListTrainers(); len(got) != 1 || got[0].Key != "shigeru" {
		t.Errorf("ListTrainers() = %+v", got)
	}
}

func TestConfigManager_CC(t *testing.T) {
	m, _, _ := newTestManager(t)

	if err := m.AddCC("Professor Oak", "oak@example.com"); err != nil {
		t.Fatalf("AddCC() error = %v", err)
	}
	if err := m.AddCC("professor elm", "elm@example.com"); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("AddCC() duplicate error = %v, want %v", err, ErrDuplicateKey)
	}

	cc, idx, err := m.GetCC("professor oak")
	if err != nil || idx != 0 || cc.Address != "oak@example.com" {
		t.Errorf("GetCC() = %+v, %d, %v", cc, idx, err)
	}

	if err := m.RemoveCC("professor"); err != nil {
		t.Fatalf("RemoveCC() error = %v", err)
	}
	if len(m.ListCCs()) != 0 {
		t.Errorf("ListCCs() = %+v, want empty", m.ListCCs())
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := map[string]bool{
		"ash@example.com": true,
		"":                false,
		"@example.com":    false,
		"ash@example":     false,
		"ash@.com":        false,
		"ash@example.":    false,
	}
	for email, want := range tests {
		if got := isValidEmail(email); got != want {
			t.Errorf("isValidEmail(%q) = %v, want %v", email, got, want)
		}
	}
}
