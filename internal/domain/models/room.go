// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RoomRecord is the metadata of a meeting room resolved or created on Connect.
type RoomRecord struct {
	ID          string `json:"id"`
	FolderID    string `json:"folder_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URLPath     string `json:"url_path"`
	Autocreated bool   `json:"autocreated"`
}

// RoomEntry is one room of a batch together with its users.
type RoomEntry[U any] struct {
	Room  RoomRecord `json:"room"`
	Users []U        `json:"users"`
}

// RoomSet maps the caller's room keys to room entries, keeping the order in
// which keys were first added. It renders as a JSON object in that order.
type RoomSet[U any] struct {
	keys    []string
	entries map[string]*RoomEntry[U]
}

// NewRoomSet returns an empty RoomSet.
func NewRoomSet[U any]() *RoomSet[U] {
	return &RoomSet[U]{entries: make(map[string]*RoomEntry[U])}
}

// Add stores room under key with an empty user list and returns the entry.
// An existing entry for key keeps its position and is replaced.
func (s *RoomSet[U]) Add(key string, room RoomRecord) *RoomEntry[U] {
	if s.entries == nil {
		s.entries = make(map[string]*RoomEntry[U])
	}
	if _, ok := s.entries[key]; !ok {
		s.keys = append(s.keys, key)
	}
	entry := &RoomEntry[U]{Room: room, Users: []U{}}
	s.entries[key] = entry
	return entry
}

// Get returns the entry for key.
func (s *RoomSet[U]) Get(key string) (*RoomEntry[U], bool) {
	if s == nil || s.entries == nil {
		return nil, false
	}
	entry, ok := s.entries[key]
	return entry, ok
}

// Keys returns the room keys in insertion order.
func (s *RoomSet[U]) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Len returns the number of rooms.
func (s *RoomSet[U]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// MarshalJSON renders the set as an object keyed by room key, in order.
func (s *RoomSet[U]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(s.entries[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by room key, keeping the key order of the input.
func (s *RoomSet[U]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("room set: expected object, got %v", tok)
	}

	s.keys = nil
	s.entries = make(map[string]*RoomEntry[U])
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("room set: expected key, got %v", keyTok)
		}
		var entry RoomEntry[U]
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("room set: entry %q: %w", key, err)
		}
		if _, exists := s.entries[key]; !exists {
			s.keys = append(s.keys, key)
		}
		s.entries[key] = &entry
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
