package devserver

import (
	"sync"
	"time"

	"github.com/jonathan/resume-chat/internal/types"
)

// Interaction is one logged chat turn.
type Interaction struct {
	Timestamp time.Time           `json:"timestamp"`
	Step      int                 `json:"step"`
	UserSaid  string              `json:"user_said"`
	AIReplied string              `json:"ai_replied"`
	Snapshot  types.CollectedData `json:"snapshot"`
}

// Upload is a received résumé and what was extracted from it.
type Upload struct {
	ID        string              `json:"resume_id"`
	Filename  string              `json:"filename"`
	Text      string              `json:"raw_text_content"`
	Parsed    types.CollectedData `json:"parsed_data"`
	Timestamp time.Time           `json:"timestamp"`
}

// Profile is a submitted record.
type Profile struct {
	types.SubmitRequest
	SubmittedAt time.Time `json:"submitted_at"`
}

// Store keeps chat logs, uploads and submitted profiles in memory.
type Store struct {
	mu       sync.RWMutex
	chats    map[string][]Interaction
	uploads  map[string]Upload
	profiles []Profile
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		chats:   make(map[string][]Interaction),
		uploads: make(map[string]Upload),
	}
}

// LogInteraction appends a turn to a session's log.
func (s *Store) LogInteraction(sessionID string, it Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[sessionID] = append(s.chats[sessionID], it)
}

// Interactions returns a copy of a session's log.
func (s *Store) Interactions(sessionID string) []Interaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Interaction(nil), s.chats[sessionID]...)
}

// Sessions counts the sessions that have logged at least one turn.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

// SaveUpload records an upload.
func (s *Store) SaveUpload(u Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[u.ID] = u
}

// Upload returns a recorded upload.
func (s *Store) Upload(id string) (Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	return u, ok
}

// SaveProfile records a submitted profile.
func (s *Store) SaveProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, p)
}

// Profiles returns every submitted profile in submission order.
func (s *Store) Profiles() []Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Profile(nil), s.profiles...)
}
