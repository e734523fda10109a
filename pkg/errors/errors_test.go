package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/txsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotInitializedError(t *testing.T) {
	err := pkgerrors.NewNotInitializedError("/work/app", "no .tx directory found")
	assert.Equal(t, "project not initialized at /work/app: no .tx directory found", err.Error())
	assert.True(t, pkgerrors.IsNotInitialized(err))
	assert.True(t, pkgerrors.IsNotInitialized(fmt.Errorf("open: %w", err)))
}

func TestConfigError(t *testing.T) {
	t.Run("with component", func(t *testing.T) {
		base := errors.New("bad entry")
		err := pkgerrors.NewConfigError("lang_map", "malformed entry pt_BR", base)
		assert.Equal(t, "configuration error in lang_map: malformed entry pt_BR", err.Error())
		assert.ErrorIs(t, err, base)
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
		assert.True(t, pkgerrors.IsConfigError(err))
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "broken"}
		assert.Equal(t, "configuration error: broken", err.Error())
	})
}

func TestUnknownResourceError(t *testing.T) {
	err := pkgerrors.NewUnknownResourceError("proj.missing*")
	assert.Equal(t, "specified resource 'proj.missing*' does not exist", err.Error())
	assert.True(t, pkgerrors.IsUnknownResource(err))
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCredentialsError(t *testing.T) {
	err := pkgerrors.NewCredentialsError("https://www.transifex.com", "", nil)
	assert.Equal(t, "no credentials for host https://www.transifex.com", err.Error())
	assert.True(t, pkgerrors.IsCredentialsMissing(err))

	withMsg := pkgerrors.NewCredentialsError("https://tx.example.com", "token is empty", nil)
	assert.Contains(t, withMsg.Error(), "token is empty")
}

func TestRemoteError(t *testing.T) {
	tests := []struct {
		status   int
		kind     pkgerrors.RemoteErrorKind
		sentinel error
	}{
		{status: http.StatusUnauthorized, kind: pkgerrors.KindUnauthorized, sentinel: pkgerrors.ErrUnauthorized},
		{status: http.StatusForbidden, kind: pkgerrors.KindForbidden, sentinel: pkgerrors.ErrForbidden},
		{status: http.StatusNotFound, kind: pkgerrors.KindNotFound, sentinel: pkgerrors.ErrNotFound},
		{status: http.StatusInternalServerError, kind: pkgerrors.KindServer},
		{status: http.StatusBadRequest, kind: pkgerrors.KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := pkgerrors.NewRemoteError("resource_stats", tt.status, "")
			assert.Equal(t, tt.kind, err.Kind)

			kind, ok := pkgerrors.RemoteKind(fmt.Errorf("wrapped: %w", err))
			assert.True(t, ok)
			assert.Equal(t, tt.kind, kind)

			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}

	t.Run("server message", func(t *testing.T) {
		err := pkgerrors.NewRemoteError("push_translation", 400, "Invalid file")
		assert.Equal(t, "remote server replied (status 400): Invalid file", err.Error())
	})

	t.Run("network", func(t *testing.T) {
		base := errors.New("connection refused")
		err := pkgerrors.NewNetworkError("resource_stats", base)
		assert.Equal(t, pkgerrors.KindNetwork, err.Kind)
		assert.ErrorIs(t, err, pkgerrors.ErrNetwork)
		assert.ErrorIs(t, err, base)
		assert.Equal(t, "network", err.Kind.String())
	})

	t.Run("not a remote error", func(t *testing.T) {
		_, ok := pkgerrors.RemoteKind(errors.New("plain"))
		assert.False(t, ok)
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("minimum_perc", 120, "must be between 0 and 100")
		assert.Equal(t, "validation failed for field minimum_perc: must be between 0 and 100", err.Error())
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "nothing to push"}
		assert.Equal(t, "validation failed: nothing to push", err.Error())
	})
}

func TestSyncError(t *testing.T) {
	base := pkgerrors.NewRemoteError("pull_file", 500, "boom")

	err := pkgerrors.NewSyncError("proj.core", []string{"el"}, base)
	assert.Equal(t, "sync error for resource proj.core (languages: [el]): remote server replied (status 500): boom", err.Error())
	assert.ErrorIs(t, err, base)

	whole := pkgerrors.NewSyncError("proj.core", nil, base)
	assert.Equal(t, "sync error for resource proj.core: remote server replied (status 500): boom", whole.Error())
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, pkgerrors.WrapIO("read", "/x", nil))
	assert.NoError(t, pkgerrors.WrapParse("yaml", "/x", nil))
	assert.NoError(t, pkgerrors.WrapResource("load", "config", "", nil))

	base := errors.New("permission denied")

	ioErr := pkgerrors.WrapIO("write", "/work/app/locale/el.po", base)
	assert.Equal(t, "IO error during write of /work/app/locale/el.po: permission denied", ioErr.Error())
	assert.ErrorIs(t, ioErr, base)

	parseErr := pkgerrors.WrapParse("yaml", ".tx/config.yaml", base)
	var pe *pkgerrors.ParseError
	assert.True(t, errors.As(parseErr, &pe))
	assert.Equal(t, "yaml", pe.Format)

	resErr := pkgerrors.WrapResource("load", "config", "", base)
	assert.Equal(t, "failed to load config: permission denied", resErr.Error())
}
