package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petervdpas/codeseed/internal/workspace"
)

func TestHub_PublishToProjectSubscribers(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe("p1")
	b, cancelB := h.Subscribe("p2")
	defer cancelB()

	assert.Equal(t, 1, h.Publish(Update{Project: "p1", Doc: "<p>1</p>"}))

	u := <-a
	assert.Equal(t, "<p>1</p>", u.Doc)
	assert.False(t, u.At.IsZero())
	assert.Empty(t, b)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 0, h.Subscribers("p1"))
	assert.Equal(t, 0, h.Publish(Update{Project: "p1"}))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("p")
	defer cancel()

	delivered := 0
	for i := 0; i < 20; i++ {
		delivered += h.Publish(Update{Project: "p"})
	}
	require.Equal(t, cap(ch), delivered)
}

func TestHub_PushOnlyWhenAffected(t *testing.T) {
	h := NewHub()
	c := NewComposer(Options{})
	files := []workspace.Entry{
		{Path: "index.html", Content: "<head></head><body></body>"},
		{Path: "style.css", Content: "p{}"},
	}

	n, err := h.Push(c, "p1", files, "style.css")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ch, cancel := h.Subscribe("p1")
	defer cancel()

	n, err = h.Push(c, "p1", files, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = h.Push(c, "p1", files, "style.css")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	u := <-ch
	assert.Equal(t, "index.html", u.Root)
	assert.Contains(t, u.Doc, "<style>p{}</style></head>")

	_, err = h.Push(c, "p1", files[1:], "")
	assert.Error(t, err)
}
