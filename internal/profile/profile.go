// Package profile persists named display profiles.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"display-profile-switcher/internal/display"
)

const lockFileSuffix = ".lock"

var (
	ErrNotFound      = errors.New("profile not found")
	ErrDuplicateName = errors.New("a profile with this name already exists")
	ErrEmptyName     = errors.New("profile name is empty")
)

// Profile is a named set of per-display settings, optionally with the audio
// devices to switch to.
type Profile struct {
	ID                string                   `json:"id" yaml:"id"`
	Name              string                   `json:"name" yaml:"name"`
	Settings          []display.DisplaySetting `json:"displaySettings" yaml:"displaySettings"`
	AudioOutputDevice string                   `json:"audioOutputDeviceId,omitempty" yaml:"audioOutputDeviceId,omitempty"`
	AudioInputDevice  string                   `json:"audioInputDeviceId,omitempty" yaml:"audioInputDeviceId,omitempty"`
	CreatedAt         time.Time                `json:"createdAt" yaml:"createdAt"`
}

func New(name string, settings []display.DisplaySetting) Profile {
	return Profile{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Settings:  settings,
		CreatedAt: time.Now().UTC(),
	}
}

type document struct {
	Profiles         []Profile `json:"profiles"`
	CurrentProfileID string    `json:"currentProfileId,omitempty"`
}

// Store is the profiles file. Mutations are written back immediately.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the profiles file at path. A missing file is an empty store.
func Open(path string) (*Store, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, doc: doc}, nil
}

func readDocument(path string) (document, error) {
	var doc document
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read profiles: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse profiles: %w", err)
	}
	return doc, nil
}

func (s *Store) Path() string {
	return s.path
}

// update applies fn to the document as it is on disk and writes the result.
// The file is re-read under the lock so changes made by other processes since
// Open are kept. The in-memory document only changes once the write succeeds.
func (s *Store) update(fn func(*document) error) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	lock := flock.New(s.path + lockFileSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock profiles: %w", err)
	}
	defer lock.Unlock()

	doc, err := readDocument(s.path)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize profiles: %w", err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	s.doc = doc
	return nil
}

// writeFileAtomic replaces path through a rename so unlocked readers never see
// a partial document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) Profiles() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.doc.Profiles)
}

// Add stores p, assigning an id when it has none. Names are unique ignoring
// case.
func (s *Store) Add(p Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Profile{}, ErrEmptyName
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	err := s.update(func(doc *document) error {
		if doc.indexOf(p.Name) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
		}
		doc.Profiles = append(doc.Profiles, p)
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Remove deletes the profile with the given id or name. Removing the current
// profile clears the current id.
func (s *Store) Remove(idOrName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(doc *document) error {
		i := doc.indexOf(idOrName)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, idOrName)
		}
		if doc.Profiles[i].ID == doc.CurrentProfileID {
			doc.CurrentProfileID = ""
		}
		doc.Profiles = slices.Delete(doc.Profiles, i, i+1)
		return nil
	})
}

// Find looks a profile up by id, then by name ignoring case.
func (s *Store) Find(idOrName string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.doc.indexOf(idOrName)
	if i < 0 {
		return Profile{}, false
	}
	return s.doc.Profiles[i], true
}

func (d *document) indexOf(idOrName string) int {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return -1
	}
	for i, p := range d.Profiles {
		if p.ID == key {
			return i
		}
	}
	for i, p := range d.Profiles {
		if strings.EqualFold(p.Name, key) {
			return i
		}
	}
	return -1
}

// SetCurrent records id as the applied profile.
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(doc *document) error {
		if !slices.ContainsFunc(doc.Profiles, func(p Profile) bool { return p.ID == id }) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		doc.CurrentProfileID = id
		return nil
	})
}

func (s *Store) Current() (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.doc.Profiles {
		if p.ID == s.doc.CurrentProfileID {
			return p, true
		}
	}
	return Profile{}, false
}

func ExportYAML(p Profile) ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("export profile %s: %w", p.Name, err)
	}
	return data, nil
}

func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("profiles path is empty")
	}
	if strings.HasSuffix(strings.TrimSpace(path), string(os.PathSeparator)) {
		return errors.New("profiles path must be a file")
	}
	return nil
}

// ResolvePath turns the configured profiles file into an absolute path. A
// bare file name is placed under ~/Display Profiles and .json is added when
// the name has no extension.
func ResolvePath(input string) (string, error) {
	if err := ValidatePath(input); err != nil {
		return "", err
	}

	cleaned, err := homedir.Expand(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("expand profiles path: %w", err)
	}
	if filepath.Ext(cleaned) == "" {
		cleaned += ".json"
	}
	if isExplicitPath(cleaned) {
		return cleaned, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, "Display Profiles", cleaned), nil
}

func isExplicitPath(path string) bool {
	if filepath.IsAbs(path) {
		return true
	}
	if filepath.VolumeName(path) != "" {
		return true
	}
	if strings.HasPrefix(path, `\\`) {
		return true
	}
	if strings.ContainsRune(path, os.PathSeparator) || strings.ContainsRune(path, '/') {
		return true
	}
	return false
}
