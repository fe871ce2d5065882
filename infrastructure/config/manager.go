package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Errors for config management
var (
	ErrTrainerNotFound  = errors.New("trainer not found")
	ErrAmbiguousTrainer = errors.New("multiple trainers match query")
	ErrCCNotFound       = errors.New("cc not found")
	ErrDuplicateKey     = errors.New("key already exists")
	ErrDuplicateID      = errors.New("trainer id already in use")
	ErrInvalidEmail     = errors.New("invalid email format")
)

// ConfigManager provides CRUD operations for config entries
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Trainer represents a trainer entry
type Trainer struct {
	Key   string
	ID    int64
	Name  string
	Email string
}

// Recipient represents a default CC entry
type Recipient struct {
	Key     string
	Name    string
	Address string
}

// --- Trainer CRUD ---

// AddTrainer adds a new trainer to config
func (m *ConfigManager) AddTrainer(key string, id int64, name, email string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if key == "" {
		return fmt.Errorf("trainer key is required")
	}
	if id <= 0 {
		return fmt.Errorf("trainer id must be positive")
	}
	if name == "" {
		return fmt.Errorf("trainer name is required")
	}
	if email != "" && !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}

	if m.config.Trainers == nil {
		m.config.Trainers = make(map[string]TrainerConfig)
	}
	if _, exists := m.config.Trainers[key]; exists {
		return fmt.Errorf("%w: trainer %q", ErrDuplicateKey, key)
	}
	for other, tc := range m.config.Trainers {
		if tc.ID == id {
			return fmt.Errorf("%w: %d (trainer %q)", ErrDuplicateID, id, other)
		}
	}

	m.config.Trainers[key] = TrainerConfig{ID: id, Name: name, Email: email}
	return Save(m.config, m.configPath)
}

// ListTrainers returns all trainers ordered by key
func (m *ConfigManager) ListTrainers() []Trainer {
	result := make([]Trainer, 0, len(m.config.Trainers))
	for key, tc := range m.config.Trainers {
		result = append(result, Trainer{Key: key, ID: tc.ID, Name: tc.Name, Email: tc.Email})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// GetTrainer gets a trainer by key (case-insensitive)
func (m *ConfigManager) GetTrainer(key string) (Trainer, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if tc, exists := m.config.Trainers[key]; exists {
		return Trainer{Key: key, ID: tc.ID, Name: tc.Name, Email: tc.Email}, nil
	}
	return Trainer{}, fmt.Errorf("%w: %q", ErrTrainerNotFound, key)
}

// FindTrainer resolves a key, numeric ID or in-game name (case-insensitive)
func (m *ConfigManager) FindTrainer(query string) (Trainer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Trainer{}, fmt.Errorf("%w: empty query", ErrTrainerNotFound)
	}
	if t, err := m.GetTrainer(query); err == nil {
		return t, nil
	}

	id, idErr := strconv.ParseInt(query, 10, 64)
	var matches []Trainer
	for _, t := range m.ListTrainers() {
		if (idErr == nil && t.ID == id) || strings.EqualFold(t.Name, query) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return Trainer{}, fmt.Errorf("%w: %q", ErrTrainerNotFound, query)
	case 1:
		return matches[0], nil
	default:
		keys := make([]string, len(matches))
		for i, t := range matches {
			keys[i] = t.Key
		}
		return Trainer{}, fmt.Errorf("%w: %q matches %s - use the trainer key", ErrAmbiguousTrainer, query, strings.Join(keys, ", "))
	}
}

// RemoveTrainer removes a trainer by key
func (m *ConfigManager) RemoveTrainer(key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, exists := m.config.Trainers[key]; !exists {
		return fmt.Errorf("%w: %q", ErrTrainerNotFound, key)
	}

	delete(m.config.Trainers, key)
	return Save(m.config, m.configPath)
}

// UpdateTrainer updates a trainer's name and/or email
func (m *ConfigManager) UpdateTrainer(key, name, email string) error {
	key = strings.ToLower(strings.TrimSpace(key))

	tc, exists := m.config.Trainers[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrTrainerNotFound, key)
	}

	if name = strings.TrimSpace(name); name != "" {
		tc.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		if !isValidEmail(email) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
		}
		tc.Email = email
	}

	m.config.Trainers[key] = tc
	return Save(m.config, m.configPath)
}

// --- CC CRUD ---

// AddCC adds a new default CC recipient, keyed by lower-cased first name
func (m *ConfigManager) AddCC(name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return fmt.Errorf("cc name is required")
	}
	if !isValidEmail(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	if _, _, err := m.GetCC(ccKey(name)); err == nil {
		return fmt.Errorf("%w: cc %q", ErrDuplicateKey, ccKey(name))
	}

	m.config.Email.DefaultCC = append(m.config.Email.DefaultCC, RecipientConfig{Name: name, Address: email})
	return Save(m.config, m.configPath)
}

// ListCCs returns all default CC recipients
func (m *ConfigManager) ListCCs() []Recipient {
	result := make([]Recipient, 0, len(m.config.Email.DefaultCC))
	for _, cc := range m.config.Email.DefaultCC {
		result = append(result, Recipient{Key: ccKey(cc.Name), Name: cc.Name, Address: cc.Address})
	}
	return result
}

// GetCC gets a CC by first name or full name (case-insensitive)
func (m *ConfigManager) GetCC(key string) (Recipient, int, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, cc := range m.config.Email.DefaultCC {
		if ccKey(cc.Name) == key || strings.ToLower(cc.Name) == key {
			return Recipient{Key: ccKey(cc.Name), Name: cc.Name, Address: cc.Address}, i, nil
		}
	}
	return Recipient{}, -1, fmt.Errorf("%w: %q", ErrCCNotFound, key)
}

// RemoveCC removes a CC by key
func (m *ConfigManager) RemoveCC(key string) error {
	_, idx, err := m.GetCC(key)
	if err != nil {
		return err
	}

	m.config.Email.DefaultCC = append(m.config.Email.DefaultCC[:idx], m.config.Email.DefaultCC[idx+1:]...)
	return Save(m.config, m.configPath)
}

func ccKey(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// isValidEmail performs basic email validation
func isValidEmail(email string) bool {
	atIdx := strings.Index(email, "@")
	if atIdx < 1 {
		return false
	}
	domain := email[atIdx+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// SuggestAddTrainerCommand returns the command to add a missing trainer
func SuggestAddTrainerCommand(key string) string {
	return fmt.Sprintf(`poke-battle-logger config add trainer --key %s --id 1 --name "In-game Name" --email "email@example.com"`, key)
}
