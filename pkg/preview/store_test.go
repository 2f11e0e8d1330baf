package preview

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateOpenRevoke(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("/api/previews/")
	data := []byte{0x89, 'P', 'N', 'G'}

	ref := s.Create(UploadedFile{Name: "me.png", ContentType: "image/png", Data: data})
	require.False(t, ref.IsZero())
	assert.Equal(t, "/api/previews/"+ref.ID.String(), ref.URI)
	assert.Equal(t, 1, s.Len())

	// the store keeps its own copy
	data[0] = 0
	got, ok := s.Open(ref.ID)
	require.True(t, ok)
	assert.Equal(t, byte(0x89), got.Data[0])
	assert.Equal(t, "image/png", got.ContentType)

	s.Revoke(ref)
	_, ok = s.Open(ref.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	// second revoke is a no-op
	s.Revoke(ref)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_FreshReferences(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("blob:")
	a := s.Create(UploadedFile{Name: "a.jpg"})
	b := s.Create(UploadedFile{Name: "a.jpg"})

	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, strings.HasPrefix(a.URI, "blob:/"))
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_RevokeZeroAndUnknown(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore("")
	ref := s.Create(UploadedFile{Name: "x.png"})

	s.Revoke(Reference{})
	s.Revoke(Reference{ID: uuid.New()})

	assert.Equal(t, 1, s.Len())
	_, ok := s.Open(ref.ID)
	assert.True(t, ok)
}
