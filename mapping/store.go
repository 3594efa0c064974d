package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrMappingNotFound is returned by LoadExisting when the mapping file is absent.
var ErrMappingNotFound = errors.New("mapping file not found")

// Entry is one local reference and the URL that replaces it.
type Entry struct {
	Ref string
	URL string
}

// Store is the persisted local-reference to remote-URL ledger. Keys are
// unique, kept in insertion order, and never removed.
type Store struct {
	path    string
	keys    []string
	entries map[string]string
}

// New returns an empty store that saves to path.
func New(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]string),
	}
}

// Load reads the mapping at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	store, err := LoadExisting(path)
	if errors.Is(err, ErrMappingNotFound) {
		return New(path), nil
	}
	return store, err
}

// LoadExisting reads the mapping at path and fails with ErrMappingNotFound
// when it does not exist.
func LoadExisting(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMappingNotFound, path)
		}
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	store := New(path)
	if len(bytes.TrimSpace(data)) == 0 {
		return store, nil
	}
	if err := store.decode(data); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	return store, nil
}

// decode walks the JSON object token by token so the file's key order survives.
func (s *Store) decode(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object")
	}

	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", keyToken)
		}

		valueToken, err := decoder.Token()
		if err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		url, ok := valueToken.(string)
		if !ok {
			return fmt.Errorf("value for %q is not a string", key)
		}

		// A repeated key keeps its first position and its last value, as
		// json.Unmarshal into a map would.
		if _, exists := s.entries[key]; !exists {
			s.keys = append(s.keys, key)
		}
		s.entries[key] = url
	}

	if _, err := decoder.Token(); err != nil {
		return err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after mapping object")
	}
	return nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Has reports whether ref is already mapped.
func (s *Store) Has(ref string) bool {
	_, ok := s.entries[ref]
	return ok
}

// Get returns the URL for ref.
func (s *Store) Get(ref string) (string, bool) {
	url, ok := s.entries[ref]
	return url, ok
}

// InsertIfAbsent records ref -> url unless ref is already present.
// It reports whether the entry was added.
func (s *Store) InsertIfAbsent(ref string, url string) bool {
	if s.Has(ref) {
		return false
	}
	s.keys = append(s.keys, ref)
	s.entries[ref] = url
	return true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.keys)
}

// Entries returns all entries in insertion order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, 0, len(s.keys))
	for _, key := range s.keys {
		out = append(out, Entry{Ref: key, URL: s.entries[key]})
	}
	return out
}

// Save writes the whole mapping as an indented JSON object.
func (s *Store) Save() error {
	data, err := s.encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) encode() ([]byte, error) {
	var buf bytes.Buffer
	if len(s.keys) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("{\n")
	for i, key := range s.keys {
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		v, err := marshalString(s.entries[key])
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
		if i < len(s.keys)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// marshalString encodes s as a JSON string without HTML escaping, so URLs
// with query strings stay readable.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
