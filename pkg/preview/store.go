package preview

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// UploadedFile is an image selected in the profile picture input.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Reference is a revocable locator for a stored preview.
type Reference struct {
	ID  uuid.UUID
	URI string
}

// IsZero reports whether r points at nothing, e.g. the placeholder.
func (r Reference) IsZero() bool {
	return r.ID == uuid.Nil
}

// Store hands out short-lived preview references for uploaded images.
type Store interface {
	// Create keeps a copy of the file and returns a fresh reference to it.
	Create(file UploadedFile) Reference
	// Revoke releases the bytes behind ref. Unknown or zero references are ignored.
	Revoke(ref Reference)
	// Open returns the file behind a live reference.
	Open(id uuid.UUID) (UploadedFile, bool)
	// Len is the number of live references.
	Len() int
}

type memoryStore struct {
	baseURL string
	mu      sync.RWMutex
	files   map[uuid.UUID]UploadedFile
}

// NewMemoryStore creates an in-process Store. Reference URIs are
// baseURL + "/" + id.
func NewMemoryStore(baseURL string) Store {
	return &memoryStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		files:   make(map[uuid.UUID]UploadedFile),
	}
}

func (s *memoryStore) Create(file UploadedFile) Reference {
	data := make([]byte, len(file.Data))
	copy(data, file.Data)
	file.Data = data

	id := uuid.New()

	s.mu.Lock()
	s.files[id] = file
	s.mu.Unlock()

	return Reference{ID: id, URI: s.baseURL + "/" + id.String()}
}

func (s *memoryStore) Revoke(ref Reference) {
	if ref.IsZero() {
		return
	}
	s.mu.Lock()
	delete(s.files, ref.ID)
	s.mu.Unlock()
}

func (s *memoryStore) Open(id uuid.UUID) (UploadedFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	return f, ok
}

func (s *memoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
