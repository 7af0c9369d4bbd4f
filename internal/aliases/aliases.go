// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aliases

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"costcenter-linker/internal/linker"
	"costcenter-linker/internal/paths"
)

const (
	fileVersion = "1.0"
	idFormat    = "ALS-%08d"

	// DefaultReviewWindow is how long a generated, still disabled alias is kept
	DefaultReviewWindow = 7 * 24 * time.Hour
)

var (
	// ErrAliasExists means the source name already has an alias
	ErrAliasExists = errors.New("alias already exists for this name")
	// ErrAliasNotFound means no alias has the given id
	ErrAliasNotFound = errors.New("alias not found")
	// ErrEmptyName is returned when adding an alias for a name that normalizes to nothing
	ErrEmptyName = errors.New("alias source name is empty")
)

// Rule maps an invoice name to a registry cédula confirmed by a person
type Rule struct {
	ID           string            `yaml:"id"`
	Hash         string            `yaml:"hash"`
	SourceName   string            `yaml:"source_name"`
	RegistryID   string            `yaml:"registry_id"`
	RegistryName string            `yaml:"registry_name,omitempty"`
	Reason       string            `yaml:"reason"`
	Enabled      bool              `yaml:"enabled"`
	CreatedBy    string            `yaml:"created_by,omitempty"`
	CreatedAt    time.Time         `yaml:"created_at"`
	ExpiresAt    *time.Time        `yaml:"expires_at,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

// Expired reports whether the rule has passed its expiry at now
func (r Rule) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// File is the on-disk alias document
type File struct {
	Version string `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

// Manager owns one alias file
type Manager struct {
	path string
	file *File
	now  func() time.Time
}

// NewManager loads the alias file at path. An empty path uses the default
// location; a missing file starts an empty set.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		path = paths.GetAliasesFile()
	}
	m := &Manager{path: path, now: time.Now}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	m.file = &File{Version: fileVersion}
	data, err := os.ReadFile(filepath.Clean(m.path))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read alias file: %w", err)
	}
	if err := yaml.Unmarshal(data, m.file); err != nil {
		return fmt.Errorf("failed to parse alias file %s: %w", m.path, err)
	}
	if m.file.Version == "" {
		m.file.Version = fileVersion
	}
	return nil
}

func (m *Manager) save() error {
	data, err := yaml.Marshal(m.file)
	if err != nil {
		return fmt.Errorf("failed to marshal alias file: %w", err)
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write alias file: %w", err)
	}
	return nil
}

// Path returns the alias file location
func (m *Manager) Path() string { return m.path }

// NameHash keys a source name by its normalized form, so accents, case and
// punctuation do not matter
func NameHash(name string) string {
	n := linker.Normalize(name)
	if n == "" {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(n)))
}

func (m *Manager) nextID() func() string {
	maxID := 0
	for _, r := range m.file.Rules {
		var num int
		if _, err := fmt.Sscanf(r.ID, idFormat, &num); err == nil && num > maxID {
			maxID = num
		}
	}
	return func() string {
		maxID++
		return fmt.Sprintf(idFormat, maxID)
	}
}

func (m *Manager) indexOf(hash string) int {
	for i, r := range m.file.Rules {
		if r.Hash == hash {
			return i
		}
	}
	return -1
}

// Lookup returns the enabled, unexpired rule for name
func (m *Manager) Lookup(name string) (*Rule, bool) {
	hash := NameHash(name)
	if hash == "" {
		return nil, false
	}
	now := m.now()
	for i := range m.file.Rules {
		r := &m.file.Rules[i]
		if r.Hash == hash && r.Enabled && !r.Expired(now) {
			return r, true
		}
	}
	return nil, false
}

// Apply resolves named records through their active alias. A record is
// rewritten when it has no cédula, or when reg is non-nil and its cédula is
// not in reg; a cédula the registry knows is never replaced. It returns the
// updated copy and the number of records changed.
func (m *Manager) Apply(records []linker.SourceRecord, reg linker.Registry) ([]linker.SourceRecord, int) {
	out := make([]linker.SourceRecord, len(records))
	copy(out, records)

	applied := 0
	for i, rec := range out {
		if rec.Name == "" || !unresolved(rec.ID, reg) {
			continue
		}
		rule, ok := m.Lookup(rec.Name)
		if !ok {
			continue
		}
		out[i].ID = rule.RegistryID
		applied++
	}
	return out, applied
}

func unresolved(id string, reg linker.Registry) bool {
	if id == "" {
		return true
	}
	return reg != nil && len(reg.FindByID(id)) == 0
}

// Add records a confirmed alias. A nil expiresAt never expires.
func (m *Manager) Add(sourceName, registryID, reason, createdBy string, expiresAt *time.Time) (*Rule, error) {
	hash := NameHash(sourceName)
	if hash == "" {
		return nil, ErrEmptyName
	}
	if m.indexOf(hash) >= 0 {
		return nil, fmt.Errorf("%q: %w", sourceName, ErrAliasExists)
	}

	rule := Rule{
		ID:         m.nextID()(),
		Hash:       hash,
		SourceName: sourceName,
		RegistryID: linker.CleanID(registryID),
		Reason:     reason,
		Enabled:    true,
		CreatedBy:  createdBy,
		CreatedAt:  m.now(),
		ExpiresAt:  expiresAt,
	}
	m.file.Rules = append(m.file.Rules, rule)
	if err := m.save(); err != nil {
		return nil, err
	}
	return &m.file.Rules[len(m.file.Rules)-1], nil
}

// GenerateFromSuggestions writes a disabled alias for the best candidate of
// every unmatched name that has none yet. Rules expire after
// DefaultReviewWindow unless someone enables them. It returns how many were
// added.
func (m *Manager) GenerateFromSuggestions(suggestions []linker.ManualSuggestions, reason string) (int, error) {
	next := m.nextID()
	now := m.now()
	expiry := now.Add(DefaultReviewWindow)

	added := 0
	for _, s := range suggestions {
		if len(s.Candidates) == 0 {
			continue
		}
		hash := NameHash(s.SourceName)
		if hash == "" || m.indexOf(hash) >= 0 {
			continue
		}
		best := s.Candidates[0]
		m.file.Rules = append(m.file.Rules, Rule{
			ID:           next(),
			Hash:         hash,
			SourceName:   s.SourceName,
			RegistryID:   linker.CleanID(best.ID),
			RegistryName: best.RegistryName,
			Reason:       reason,
			Enabled:      false,
			CreatedBy:    "suggestions",
			CreatedAt:    now,
			ExpiresAt:    &expiry,
			Metadata: map[string]string{
				"score":       linker.ConfidenceLabel(best.Score),
				"cost_center": best.CostCenter,
			},
		})
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, m.save()
}

// Enable turns a rule on and clears its review expiry
func (m *Manager) Enable(id, reason string) error {
	for i := range m.file.Rules {
		r := &m.file.Rules[i]
		if r.ID != id {
			continue
		}
		r.Enabled = true
		r.ExpiresAt = nil
		if reason != "" {
			r.Reason = reason
		}
		return m.save()
	}
	return fmt.Errorf("%s: %w", id, ErrAliasNotFound)
}

// Disable turns a rule off without removing it
func (m *Manager) Disable(id string) error {
	for i := range m.file.Rules {
		if m.file.Rules[i].ID == id {
			m.file.Rules[i].Enabled = false
			return m.save()
		}
	}
	return fmt.Errorf("%s: %w", id, ErrAliasNotFound)
}

// Remove deletes a rule by id
func (m *Manager) Remove(id string) error {
	for i, r := range m.file.Rules {
		if r.ID == id {
			m.file.Rules = append(m.file.Rules[:i], m.file.Rules[i+1:]...)
			return m.save()
		}
	}
	return fmt.Errorf("%s: %w", id, ErrAliasNotFound)
}

// CleanupExpired drops expired rules and returns how many went
func (m *Manager) CleanupExpired() (int, error) {
	now := m.now()
	var active []Rule
	for _, r := range m.file.Rules {
		if !r.Expired(now) {
			active = append(active, r)
		}
	}
	removed := len(m.file.Rules) - len(active)
	if removed == 0 {
		return 0, nil
	}
	m.file.Rules = active
	return removed, m.save()
}

// List returns a copy of every rule in file order
func (m *Manager) List() []Rule {
	return append([]Rule(nil), m.file.Rules...)
}
