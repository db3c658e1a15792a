// Package guildconfig persists per-guild bot settings: the reaction
// translation timeout and each user's standing auto-translation
// preference. The whole store is one JSON document that is loaded once
// at startup and rewritten in full after every mutation.
package guildconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

const schemaVersion = 1

// UserPref is a user's standing auto-translation preference within one
// guild. Active is never true without a recognized target language code.
type UserPref struct {
	Active         bool   `json:"active"`
	TargetLangCode string `json:"target_lang_code"`
}

// NewUserPref builds a UserPref upholding the activation invariant.
// known reports whether a language code is currently recognized; when
// active is requested with an empty or unrecognized code, the returned
// preference is inactive.
func NewUserPref(active bool, code string, known func(string) bool) UserPref {
	code = strings.ToLower(code)
	if active && (code == "" || !known(code)) {
		active = false
	}
	return UserPref{Active: active, TargetLangCode: code}
}

type guildEntry struct {
	Timeout        *int                `json:"timeout,omitempty"`
	ActivatedUsers map[string]UserPref `json:"activated_users,omitempty"`
}

type document struct {
	Version int                    `json:"version"`
	Guilds  map[string]*guildEntry `json:"guilds"`
}

// Store is the durable mapping from guild ID to guild settings.
// All mutation happens under one mutex together with the full-store
// persist, so concurrent handlers cannot lose each other's updates.
type Store struct {
	mu     sync.Mutex
	path   string
	guilds map[string]*guildEntry
}

// Open loads the whole settings document from path. A missing or
// corrupt file is returned as an error; bootstrap treats it as fatal.
func Open(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read guild settings from %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("corrupt guild settings in %s: %w", path, err)
	}

	guilds := doc.Guilds
	if doc.Version == 0 && guilds == nil {
		// Legacy layout: a top-level guild-id to settings mapping
		// without a version field.
		if err := json.Unmarshal(raw, &guilds); err != nil {
			return nil, fmt.Errorf("corrupt guild settings in %s: %w", path, err)
		}
	}
	if guilds == nil {
		guilds = make(map[string]*guildEntry)
	}

	return &Store{path: path, guilds: guilds}, nil
}

// Timeout returns the guild's reaction cleanup delay in seconds.
// ok is false when the guild never configured one.
func (s *Store) Timeout(guildID string) (seconds int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.guilds[guildID]
	if !ok || entry.Timeout == nil {
		return 0, false
	}
	return *entry.Timeout, true
}

// SetTimeout stores the guild's reaction cleanup delay and persists the
// whole store.
func (s *Store) SetTimeout(guildID string, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry(guildID).Timeout = &seconds
	return s.persist()
}

// UserPref returns the user's auto-translation preference in the guild.
// ok is false when none was ever stored.
func (s *Store) UserPref(guildID, userID string) (UserPref, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.guilds[guildID]
	if !ok {
		return UserPref{}, false
	}
	pref, ok := entry.ActivatedUsers[userID]
	return pref, ok
}

// SetUserPref stores the user's auto-translation preference in the
// guild and persists the whole store.
func (s *Store) SetUserPref(guildID, userID string, pref UserPref) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entry(guildID)
	if entry.ActivatedUsers == nil {
		entry.ActivatedUsers = make(map[string]UserPref)
	}
	entry.ActivatedUsers[userID] = pref
	return s.persist()
}

// entry returns the guild's settings, creating them on first write.
// Callers must hold mu.
func (s *Store) entry(guildID string) *guildEntry {
	entry, ok := s.guilds[guildID]
	if !ok {
		entry = &guildEntry{}
		s.guilds[guildID] = entry
	}
	return entry
}

// persist writes the whole document back to disk through a temp-file
// rename so a crash mid-write cannot leave a truncated store.
// Callers must hold mu.
func (s *Store) persist() error {
	raw, err := json.MarshalIndent(document{Version: schemaVersion, Guilds: s.guilds}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guild settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write guild settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace guild settings file: %w", err)
	}
	return nil
}
