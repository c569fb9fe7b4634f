package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/askstage/backend/internal/models"
)

// FileStore keeps the full question list in memory and rewrites it to a
// single JSON file on every mutation. The file is written to a temp path in
// the same directory and renamed over the old one, so a crash mid-write
// leaves the previous state intact.
//
// A single mutex serializes read-modify-write cycles within this process.
// Two processes sharing one file still race last-write-wins.
type FileStore struct {
	path string
	mu   sync.Mutex
	list []models.Question
}

// NewFileStore loads existing questions from path, creating the parent
// directory if needed. A missing or empty file starts an empty list.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) || (err == nil && len(data) == 0) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// persist writes the full list atomically. Caller holds the mutex.
func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// indexOf returns the position of id, or -1. Caller holds the mutex.
func (s *FileStore) indexOf(id string) int {
	for i := range s.list {
		if s.list[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *FileStore) ListBySpeaker(_ context.Context, speaker string) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Question
	for _, q := range s.list {
		if q.Speaker == speaker {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

func (s *FileStore) Create(_ context.Context, speaker, text string) (*models.Question, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	id, err := newQuestionID()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := models.Question{
		ID:        id,
		Speaker:   speaker,
		Text:      text,
		Approved:  false,
		Votes:     0,
		CreatedAt: nowMillis(),
	}
	s.list = append(s.list, q)
	if err := s.persist(); err != nil {
		s.list = s.list[:len(s.list)-1]
		return nil, err
	}
	return &q, nil
}

func (s *FileStore) SetApproved(_ context.Context, id string, approved bool) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	prev := s.list[i].Approved
	s.list[i].Approved = approved
	if err := s.persist(); err != nil {
		s.list[i].Approved = prev
		return nil, err
	}
	q := s.list[i]
	return &q, nil
}

func (s *FileStore) IncrementVotes(_ context.Context, id string, delta int) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	prev := s.list[i].Votes
	next := prev + delta
	if next < 0 {
		next = 0
	}
	s.list[i].Votes = next
	if err := s.persist(); err != nil {
		s.list[i].Votes = prev
		return nil, err
	}
	q := s.list[i]
	return &q, nil
}

func (s *FileStore) Delete(_ context.Context, id string) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	removed := s.list[i]
	rest := append(s.list[:i:i], s.list[i+1:]...)
	saved := s.list
	s.list = rest
	if err := s.persist(); err != nil {
		s.list = saved
		return nil, err
	}
	return &removed, nil
}
