package transpress_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/transpress"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := transpress.Errorf(transpress.ENOTFOUND, "article %q not found", "42")

	assert.Equal(t, transpress.ENOTFOUND, transpress.ErrorCode(err))
	assert.Equal(t, "article \"42\" not found", transpress.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, transpress.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, transpress.ErrorMessage(nil))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, transpress.EINTERNAL, transpress.ErrorCode(errors.New("boom")))
}

func TestErrorCode_WrappedWithFmt(t *testing.T) {
	t.Parallel()

	inner := transpress.Errorf(transpress.EAUTH, "bad credentials")
	err := fmt.Errorf("publish: %w", inner)

	assert.Equal(t, transpress.EAUTH, transpress.ErrorCode(err))
	assert.Equal(t, "bad credentials", transpress.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	t.Run("keeps cause and outer code", func(t *testing.T) {
		t.Parallel()

		cause := transpress.Errorf(transpress.EUNAVAILABLE, "HTTP 503")
		err := transpress.WrapError(transpress.ESOURCE, cause, "")

		assert.Equal(t, transpress.ESOURCE, transpress.ErrorCode(err))
		assert.Equal(t, "HTTP 503", transpress.ErrorMessage(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("uses explicit message", func(t *testing.T) {
		t.Parallel()

		err := transpress.WrapError(transpress.ETRANSLATE, errors.New("quota"), "chunk 2 of 3")

		assert.Equal(t, "chunk 2 of 3", transpress.ErrorMessage(err))
		assert.Contains(t, err.Error(), "quota")
	})
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code  string
		fatal bool
	}{
		{transpress.ESOURCE, true},
		{transpress.EAUTH, true},
		{transpress.ETRANSLATE, false},
		{transpress.EPUBLISH, false},
		{transpress.EIMAGE, false},
		{transpress.EINVALID, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.fatal, transpress.IsFatal(transpress.Errorf(tt.code, "x")))
		})
	}

	assert.False(t, transpress.IsFatal(nil))
}
