package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hshshssjsjjsjsqq/vercel-backend/internal/apperr"
)

func TestNormalize(t *testing.T) {
	m := Message{FullName: "  Ann Lee ", Email: " Ann@Shop.TEST", Message: " hi \n"}
	require.NoError(t, m.Normalize())
	assert.Equal(t, Message{FullName: "Ann Lee", Email: "ann@shop.test", Message: "hi"}, m)

	for _, bad := range []Message{
		{Email: "a@x.test", Message: "hi"},
		{FullName: "Ann", Message: "hi"},
		{FullName: "Ann", Email: "a@x.test", Message: "   "},
	} {
		assert.ErrorIs(t, bad.Normalize(), apperr.ErrValidation)
	}
}
