package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/emiliopalmerini/formab/internal/infrastructure/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Log
		level   zapcore.Level
		wantErr bool
	}{
		{name: "json info", cfg: config.Log{Level: "info", Format: "json"}, level: zapcore.InfoLevel},
		{name: "console debug", cfg: config.Log{Level: "debug", Format: "console"}, level: zapcore.DebugLevel},
		{name: "empty format", cfg: config.Log{Level: "warn"}, level: zapcore.WarnLevel},
		{name: "bad level", cfg: config.Log{Level: "loud", Format: "json"}, wantErr: true},
		{name: "bad format", cfg: config.Log{Level: "info", Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.level))
			assert.False(t, logger.Core().Enabled(tt.level-1))
		})
	}
}
