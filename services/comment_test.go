package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/lostfound/models"
)

func TestCommentUnknownCategoryWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	postID, err := f.lost.Create(f.ctx, "alice", lostPost("Keys", "Hall"), nil)
	require.NoError(t, err)

	for _, category := range []string{"notice", "LOST_ITEM", "", "lost"} {
		_, err = f.comments.Create(f.ctx, "alice", CommentInput{Category: category, PostID: postID, Content: "mine!"})
		assert.ErrorIs(t, err, ErrValidation, category)
	}

	n, err := f.comments.Count(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentRequiresExistingPostUserAndContent(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	postID, err := f.lost.Create(f.ctx, "alice", lostPost("Keys", "Hall"), nil)
	require.NoError(t, err)

	_, err = f.comments.Create(f.ctx, "alice", CommentInput{Category: "found_item", PostID: postID, Content: "hi"})
	assert.ErrorIs(t, err, ErrValidation, "post id belongs to another board")

	_, err = f.comments.Create(f.ctx, "ghost", CommentInput{Category: "lost_item", PostID: postID, Content: "hi"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.comments.Create(f.ctx, "alice", CommentInput{Category: "lost_item", PostID: postID, Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommentThreadsAndListing(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	f.addUser(t, "bob", false)
	postA, err := f.lost.Create(f.ctx, "alice", lostPost("Keys", "Hall"), nil)
	require.NoError(t, err)
	postB, err := f.lost.Create(f.ctx, "alice", lostPost("Phone", "Gym"), nil)
	require.NoError(t, err)
	shareID, err := f.share.Create(f.ctx, "alice", &models.ShareItemPost{
		PostBase: models.PostBase{Title: "Books", Content: "free"},
	}, nil)
	require.NoError(t, err)

	rootID, err := f.comments.Create(f.ctx, "bob", CommentInput{Category: "lost_item", PostID: postA, Content: "seen them"})
	require.NoError(t, err)
	replyID, err := f.comments.Create(f.ctx, "alice", CommentInput{
		Category: "lost_item", PostID: postA, Content: "where?", ParentCommentID: &rootID,
	})
	require.NoError(t, err)

	_, err = f.comments.Create(f.ctx, "alice", CommentInput{
		Category: "lost_item", PostID: postB, Content: "wrong thread", ParentCommentID: &rootID,
	})
	assert.ErrorIs(t, err, ErrValidation, "parent must be on the same post")

	_, err = f.comments.Create(f.ctx, "bob", CommentInput{Category: "share_item", PostID: shareID, Content: "dibs"})
	require.NoError(t, err)

	all, err := f.comments.List(f.ctx, CommentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	thread, err := f.comments.List(f.ctx, CommentFilter{Category: "lost_item", PostID: postA})
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, rootID, thread[0].ID)
	assert.Equal(t, replyID, thread[1].ID)
	require.NotNil(t, thread[1].ParentCommentID)
	assert.Equal(t, rootID, *thread[1].ParentCommentID)
	assert.Equal(t, "bob", thread[0].AuthorID)

	_, err = f.comments.List(f.ctx, CommentFilter{Category: "notice"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommentUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", false)
	postID, err := f.lost.Create(f.ctx, "alice", lostPost("Keys", "Hall"), nil)
	require.NoError(t, err)
	id, err := f.comments.Create(f.ctx, "alice", CommentInput{Category: "lost_item", PostID: postID, Content: "first"})
	require.NoError(t, err)

	content := "edited"
	c, err := f.comments.Update(f.ctx, id, CommentUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Content)
	assert.Equal(t, postID, c.PostID)
	assert.Equal(t, models.CategoryLostItem, c.Category)

	bad := "notice"
	_, err = f.comments.Update(f.ctx, id, CommentUpdate{Category: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.comments.Update(f.ctx, id+50, CommentUpdate{Content: &content})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.comments.Delete(f.ctx, id))
	_, err = f.comments.Get(f.ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.comments.Delete(f.ctx, id), ErrNotFound)
}
