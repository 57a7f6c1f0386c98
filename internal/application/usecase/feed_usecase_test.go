package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coplace/internal/adapters/out/memory"
	threaddom "coplace/internal/domain/thread"
)

var budi = Session{UID: "u1", DisplayName: "Budi"}

func startFeed(t *testing.T) (*FeedUsecase, *countingThreadRepo) {
	t.Helper()
	repo := &countingThreadRepo{ThreadRepository: memory.NewThreadRepository(testClock)}
	feed := NewFeedUsecase(repo)
	require.NoError(t, feed.Start(context.Background()))
	t.Cleanup(feed.Close)
	return feed, repo
}

func TestFeed_RejectsBlankPostWithoutBackendCall(t *testing.T) {
	feed, repo := startFeed(t)

	_, err := feed.Post(context.Background(), budi, " \n\t ", "")
	assert.ErrorIs(t, err, threaddom.ErrEmptyContent)
	assert.Zero(t, repo.creates.Load())
	assert.Empty(t, feed.Threads())
}

func TestFeed_NewPostIsAtTheHead(t *testing.T) {
	ctx := context.Background()
	feed, _ := startFeed(t)
	assert.True(t, feed.Ready())
	assert.ErrorIs(t, feed.Start(ctx), ErrFeedAlreadyStarted)

	_, err := feed.Post(ctx, budi, "pagi", "")
	require.NoError(t, err)
	created, err := feed.Post(ctx, budi, "hello #KopiLokal", "")
	require.NoError(t, err)
	assert.Equal(t, "Budi", created.AuthorName)

	ts := feed.Threads()
	require.Len(t, ts, 2)
	assert.Equal(t, created.ID, ts[0].ID)
	assert.Equal(t, "hello #KopiLokal", ts[0].Content)
}

func TestFeed_LikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	feed, _ := startFeed(t)
	th, err := feed.Post(ctx, budi, "kopi", "")
	require.NoError(t, err)

	require.NoError(t, feed.Like(ctx, th.ID, "u2"))
	require.NoError(t, feed.Like(ctx, th.ID, "u2"))
	assert.Equal(t, 1, feed.Threads()[0].LikeCount())

	require.NoError(t, feed.Unlike(ctx, th.ID, "u2"))
	require.NoError(t, feed.Unlike(ctx, th.ID, "u2"))
	assert.Zero(t, feed.Threads()[0].LikeCount())

	assert.ErrorIs(t, feed.Like(ctx, th.ID, " "), threaddom.ErrInvalidLikeUser)
}

func TestFeed_FailedLikeIsNotRolledBack(t *testing.T) {
	ctx := context.Background()
	feed, repo := startFeed(t)
	th, err := feed.Post(ctx, budi, "kopi", "")
	require.NoError(t, err)

	repo.failLike.Store(true)
	err = feed.Like(ctx, th.ID, "u2")
	require.ErrorIs(t, err, errBoom)
	assert.True(t, feed.Threads()[0].LikedBy("u2"))
}

func TestFeed_ReplyBumpsParentCount(t *testing.T) {
	ctx := context.Background()
	feed, _ := startFeed(t)
	parent, err := feed.Post(ctx, budi, "ada yang coba Gayo?", "")
	require.NoError(t, err)

	reply, err := feed.Post(ctx, Session{UID: "u2"}, "sudah, mantap", parent.ID)
	require.NoError(t, err)
	assert.Equal(t, threaddom.AnonymousAuthor, reply.AuthorName)

	ts := feed.Threads()
	require.Len(t, ts, 1)
	assert.Equal(t, 1, ts[0].ReplyCount)

	replies, err := feed.Replies(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)
}

func TestFeed_ReplyToUnknownParent(t *testing.T) {
	feed, repo := startFeed(t)
	_, err := feed.Post(context.Background(), budi, "halo", "missing")
	assert.ErrorIs(t, err, threaddom.ErrParentNotFound)
	assert.Equal(t, int32(1), repo.lookups.Load())
	assert.Zero(t, repo.creates.Load())
}

func TestFeed_SubscribeStopsAfterCancel(t *testing.T) {
	ctx := context.Background()
	feed, _ := startFeed(t)

	var lens []int
	sub := feed.Subscribe(func(ts []threaddom.Thread) { lens = append(lens, len(ts)) })
	_, err := feed.Post(ctx, budi, "satu", "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, lens)

	sub.Cancel()
	_, err = feed.Post(ctx, budi, "dua", "")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, lens)
}

func TestFeed_TrendingHashtags(t *testing.T) {
	ctx := context.Background()
	feed, _ := startFeed(t)
	for _, c := range []string{"#kopi #gayo", "#kopi pagi", "#toraja"} {
		_, err := feed.Post(ctx, budi, c, "")
		require.NoError(t, err)
	}
	got := feed.TrendingHashtags(1)
	assert.Equal(t, []threaddom.TagCount{{Tag: "#kopi", Count: 2}}, got)
}
