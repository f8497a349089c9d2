package like_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/kindred-app/kindred-backend/internal/errors"
	"github.com/kindred-app/kindred-backend/internal/service/like"
)

func TestParseContext(t *testing.T) {
	idx := 3
	promptID := "prompt-1"

	// absent context is valid
	c, err := like.ParseContext(nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = like.ParseContext(&like.ContextInput{})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = like.ParseContext(&like.ContextInput{PhotoIndex: &idx})
	require.NoError(t, err)
	assert.Equal(t, like.PhotoContext{Index: 3}, c)

	c, err = like.ParseContext(&like.ContextInput{PromptID: &promptID})
	require.NoError(t, err)
	assert.Equal(t, like.PromptContext{ID: "prompt-1"}, c)

	// both variants at once is rejected
	_, err = like.ParseContext(&like.ContextInput{PhotoIndex: &idx, PromptID: &promptID})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
