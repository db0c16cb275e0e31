package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/moodlit/internal/constants"
	"github.com/julianstephens/moodlit/internal/models"
)

// document is the on-disk layout of a JSONStore file. Events are kept in
// a slice so insertion order survives a round trip.
type document struct {
	Version  int             `json:"version"`
	Settings models.Settings `json:"settings"`
	Events   []models.Event  `json:"events"`
}

// JSONStore keeps everything in a single JSON file rewritten on each change.
type JSONStore struct {
	path    string
	doc     *document
	index   map[string]int
	now     func() time.Time
	modTime time.Time // Stamp of the file as last read or written
	size    int64
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
		now:  time.Now,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.doc = &document{
		Version:  1,
		Settings: DefaultSettings(),
		Events:   []models.Event{},
	}
	s.reindex()

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	for i := range doc.Events {
		doc.Events[i].Date = doc.Events[i].Date.Truncate(constants.EventPrecision)
	}

	s.doc = doc
	s.reindex()
	s.stamp()
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) reindex() {
	s.index = make(map[string]int, len(s.doc.Events))
	for i, e := range s.doc.Events {
		s.index[e.ID] = i
	}
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	s.stamp()

	return nil
}

func (s *JSONStore) stamp() {
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
		s.size = info.Size()
	}
}

// ready reloads the document when another process rewrote the file since
// this store last touched it, so writes never clobber foreign changes.
func (s *JSONStore) ready() error {
	if s.doc == nil {
		return ErrNotLoaded
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat storage: %w", err)
	}
	if info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil
	}
	return s.Load()
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	if err := s.ready(); err != nil {
		return models.Settings{}, err
	}
	return s.doc.Settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	if err := s.ready(); err != nil {
		return err
	}
	s.doc.Settings = settings
	return s.save()
}

func (s *JSONStore) SaveEvent(event models.Event) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, exists := s.index[event.ID]; exists {
		return fmt.Errorf("failed to save event %s: %w", event.ID, ErrDuplicateID)
	}

	event.Date = event.Date.Truncate(constants.EventPrecision)
	s.doc.Events = append(s.doc.Events, event)
	s.index[event.ID] = len(s.doc.Events) - 1

	if err := s.save(); err != nil {
		s.doc.Events = s.doc.Events[:len(s.doc.Events)-1]
		delete(s.index, event.ID)
		return err
	}
	return nil
}

func (s *JSONStore) GetEvent(id string) (models.Event, error) {
	if err := s.ready(); err != nil {
		return models.Event{}, err
	}
	i, ok := s.index[id]
	if !ok || s.doc.Events[i].IsDeleted() {
		return models.Event{}, NotFound(id)
	}
	return s.doc.Events[i], nil
}

func (s *JSONStore) GetAllEvents() ([]models.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	events := make([]models.Event, 0, len(s.doc.Events))
	for _, e := range s.doc.Events {
		if !e.IsDeleted() {
			events = append(events, e)
		}
	}
	return events, nil
}

func (s *JSONStore) GetAllEventsIncludingDeleted() ([]models.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	events := make([]models.Event, len(s.doc.Events))
	copy(events, s.doc.Events)
	return events, nil
}

func (s *JSONStore) DeleteEvent(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return NotFound(id)
	}
	if s.doc.Events[i].IsDeleted() {
		return AlreadyDeleted(id)
	}

	now := s.now().UTC().Format(time.RFC3339)
	s.doc.Events[i].DeletedAt = &now
	if err := s.save(); err != nil {
		s.doc.Events[i].DeletedAt = nil
		return err
	}
	return nil
}

func (s *JSONStore) RestoreEvent(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	i, ok := s.index[id]
	if !ok {
		return NotFound(id)
	}
	if !s.doc.Events[i].IsDeleted() {
		return NotDeleted(id)
	}

	deletedAt := s.doc.Events[i].DeletedAt
	s.doc.Events[i].DeletedAt = nil
	if err := s.save(); err != nil {
		s.doc.Events[i].DeletedAt = deletedAt
		return err
	}
	return nil
}
