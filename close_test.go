package explorer

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloser struct {
	closeErr   error
	closeCalls int
}

func (m *mockCloser) Close() error {
	m.closeCalls++
	return m.closeErr
}

func TestCloseWithLog(t *testing.T) {
	tests := []struct {
		name      string
		closer    *mockCloser
		wantLog   []string
		wantEmpty bool
	}{
		{
			name:      "successful close is silent",
			closer:    &mockCloser{},
			wantEmpty: true,
		},
		{
			name:    "close error logged at warn",
			closer:  &mockCloser{closeErr: errors.New("close failed: redis busy")},
			wantLog: []string{"failed to close resource", "response cache", "redis busy", "level=WARN"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&logBuf, nil))

			CloseWithLog(tt.closer, logger, "response cache")

			assert.Equal(t, 1, tt.closer.closeCalls)
			if tt.wantEmpty {
				assert.Empty(t, logBuf.String())
			}
			for _, want := range tt.wantLog {
				assert.Contains(t, logBuf.String(), want)
			}
		})
	}
}

func TestCloseWithLog_NilCloser(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	CloseWithLog(nil, logger, "nothing")
	assert.Empty(t, logBuf.String())
}

func TestCloseWithLog_NilLogger(t *testing.T) {
	closer := &mockCloser{closeErr: errors.New("test error")}

	require.NotPanics(t, func() {
		CloseWithLog(closer, nil, "test resource")
	})
	assert.Equal(t, 1, closer.closeCalls)
}

func TestCloseWithLog_DeferPattern(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	first := &mockCloser{}
	second := &mockCloser{closeErr: errors.New("error 2")}

	func() {
		defer CloseWithLog(second, logger, "resource 2")
		defer CloseWithLog(first, logger, "resource 1")
	}()

	assert.Equal(t, 1, first.closeCalls)
	assert.Equal(t, 1, second.closeCalls)
	assert.Contains(t, logBuf.String(), "resource 2")
	assert.NotContains(t, logBuf.String(), "resource 1")
}

func TestCloseWithLog_RealIOCloser(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	r, w := io.Pipe()
	w.Close()
	CloseWithLog(r, logger, "pipe reader")

	assert.Empty(t, logBuf.String())
}
