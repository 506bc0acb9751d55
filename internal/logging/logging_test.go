package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		debug   bool
		wantErr bool
	}{
		{name: "defaults", opts: Options{}},
		{name: "verbose", opts: Options{Verbose: true}, debug: true},
		{name: "console", opts: Options{Format: "console"}},
		{name: "level", opts: Options{Level: "debug"}, debug: true},
		{name: "verbose beats level", opts: Options{Verbose: true, Level: "error"}, debug: true},
		{name: "bad format", opts: Options{Format: "xml"}, wantErr: true},
		{name: "bad level", opts: Options{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel))
		})
	}
}
