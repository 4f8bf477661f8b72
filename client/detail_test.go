package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetail_LoadAndNotFound(t *testing.T) {
	hub := newFakeHub(t)
	hub.setGames(sampleGames()...)
	d := NewDetail(New(hub.URL, ""), &recordingOpener{})

	require.NoError(t, d.Load(context.Background(), "2"))
	require.True(t, d.Found())
	assert.Equal(t, "Sword Saga", d.Game().Title)
	assert.Empty(t, d.Comments())

	require.NoError(t, d.Load(context.Background(), "gone"), "missing listings render as not found")
	assert.False(t, d.Found())
	assert.Nil(t, d.Game())
}

func TestDetail_SubmitBlankIsNoop(t *testing.T) {
	hub := newFakeHub(t)
	hub.setGames(sampleGames()...)
	d := NewDetail(New(hub.URL, ""), &recordingOpener{})
	require.NoError(t, d.Load(context.Background(), "1"))

	before := hub.requests.Load()
	d.SetForm(CommentForm{Content: "   \n\t", Rating: 2})
	require.NoError(t, d.Submit(context.Background()))
	assert.Equal(t, before, hub.requests.Load())
	assert.Equal(t, CommentForm{Content: "   \n\t", Rating: 2}, d.Form())
}

func TestDetail_SubmitResetsFormAndReloads(t *testing.T) {
	hub := newFakeHub(t)
	hub.setGames(sampleGames()...)
	d := NewDetail(New(hub.URL, ""), &recordingOpener{})
	require.NoError(t, d.Load(context.Background(), "1"))
	assert.Equal(t, 5, d.Form().Rating, "rating defaults to 5")

	d.SetForm(CommentForm{Content: "  Loved it  ", Rating: 3})
	require.NoError(t, d.Submit(context.Background()))

	assert.Equal(t, CommentForm{Rating: 5}, d.Form())
	comments := d.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "Loved it", comments[0].Content)
	assert.Equal(t, 3, comments[0].Rating)

	d.SetForm(CommentForm{Content: "bad", Rating: 7})
	var valErr *ValidationError
	assert.ErrorAs(t, d.Submit(context.Background()), &valErr)
}

func TestDetail_Download(t *testing.T) {
	hub := newFakeHub(t)
	hub.setGames(sampleGames()...)
	opener := &recordingOpener{}
	d := NewDetail(New(hub.URL, ""), opener)
	require.NoError(t, d.Load(context.Background(), "2"))

	link, err := d.Download(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/sword.zip", link)
	assert.Equal(t, int64(1), d.Game().DownloadCount)
}
