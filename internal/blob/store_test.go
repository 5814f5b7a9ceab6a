package blob

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGet(t *testing.T) {
	s := NewStore()
	defer s.Close()

	id := s.Put([]byte("image-bytes"), "image/png")
	require.NotEmpty(t, id)

	data, mime, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("image-bytes"), data)
	assert.Equal(t, "image/png", mime)
}

func TestGetUnknownHandle(t *testing.T) {
	s := NewStore()
	defer s.Close()

	_, _, err := s.Get("no-such-handle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandlesAreUnique(t *testing.T) {
	s := NewStore()
	defer s.Close()

	a := s.Put([]byte("one"), "image/png")
	b := s.Put([]byte("two"), "image/png")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Len())
}

func TestUnfetchedHandleExpires(t *testing.T) {
	s := NewStore(WithTTL(20 * time.Millisecond))
	defer s.Close()

	id := s.Put([]byte("short-lived"), "image/png")

	// Observe eviction through Len: polling with Get would re-arm the
	// grace window and keep the handle alive.
	require.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, 5*time.Millisecond)

	_, _, err := s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchReArmsGraceWindow(t *testing.T) {
	s := NewStore(WithTTL(25*time.Millisecond), WithGrace(150*time.Millisecond))
	defer s.Close()

	id := s.Put([]byte("refetched"), "image/png")

	// Fetch just before the absolute TTL would fire; the grace window now
	// keeps the handle alive past the original deadline.
	_, _, err := s.Get(id)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	data, _, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("refetched"), data)
}

func TestGraceWindowExpires(t *testing.T) {
	s := NewStore(WithTTL(time.Minute), WithGrace(20*time.Millisecond))
	defer s.Close()

	id := s.Put([]byte("briefly-retained"), "image/png")

	_, _, err := s.Get(id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, 5*time.Millisecond)

	_, _, err = s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseEvictsEverything(t *testing.T) {
	s := NewStore()

	id := s.Put([]byte("doomed"), "image/png")
	s.Close()

	_, _, err := s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}
