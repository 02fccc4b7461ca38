package store

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// URLStore persists one schedule source URL per user as a flat JSON
// map. Setting a URL overwrites the previous one; no history is kept.
type URLStore struct {
	path string
	mu   sync.Mutex
}

func NewURLStore(path string) *URLStore {
	return &URLStore{path: path}
}

// Get returns the saved URL for the user, if any.
func (s *URLStore) Get(userID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls, err := s.load()
	if err != nil {
		return "", false
	}
	u, ok := urls[key(userID)]
	return u, ok
}

// Set validates and saves the user's source URL. Only absolute
// http/https URLs are accepted; everything a user pastes ends up in a
// browser address bar eventually.
func (s *URLStore) Set(userID int64, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("the schedule URL must be an absolute http or https address, got %q", rawURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	urls, err := s.load()
	if err != nil {
		return err
	}
	urls[key(userID)] = rawURL
	return s.save(urls)
}

func (s *URLStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read URL store: %w", err)
	}

	var urls map[string]string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("failed to parse URL store JSON: %w", err)
	}
	if urls == nil {
		urls = map[string]string{}
	}
	return urls, nil
}

func (s *URLStore) save(urls map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create URL store directory: %w", err)
	}

	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize URL store: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write URL store: %w", err)
	}
	return nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
