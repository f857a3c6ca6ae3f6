package immocrawl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/immocrawl"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := immocrawl.Errorf(immocrawl.EMALFORMED, "listing %q has no url", "card-3")

	assert.Equal(t, immocrawl.EMALFORMED, immocrawl.ErrorCode(err))
	assert.Equal(t, "listing \"card-3\" has no url", immocrawl.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("load state: %w", immocrawl.Errorf(immocrawl.ECORRUPT, "bad json"))

	assert.Equal(t, immocrawl.ECORRUPT, immocrawl.ErrorCode(err))
	assert.Equal(t, "bad json", immocrawl.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, immocrawl.EINTERNAL, immocrawl.ErrorCode(err))
	assert.Equal(t, "Internal error.", immocrawl.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, immocrawl.ErrorCode(nil))
	assert.Empty(t, immocrawl.ErrorMessage(nil))
}
