package reblog_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/reblog"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := reblog.Errorf(reblog.ENOTFOUND, "article %q not found", "42")

	assert.Equal(t, reblog.ENOTFOUND, reblog.ErrorCode(err))
	assert.Equal(t, "article \"42\" not found", reblog.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, reblog.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, reblog.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("generate: %w", reblog.Errorf(reblog.EMALFORMED, "no candidates"))

	assert.Equal(t, reblog.EMALFORMED, reblog.ErrorCode(err))
	assert.Equal(t, "no candidates", reblog.ErrorMessage(err))
}

func TestErrorCode_PlainErrorIsInternal(t *testing.T) {
	t.Parallel()

	err := errors.New("connection refused")

	assert.Equal(t, reblog.EINTERNAL, reblog.ErrorCode(err))
	assert.Equal(t, "connection refused", reblog.ErrorMessage(err))
}
