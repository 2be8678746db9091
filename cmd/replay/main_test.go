package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   bool
		wantLines int
		wantInOut string
	}{
		{
			name:      "envelopes only",
			args:      []string{"run", "../../internal/replay/testdata/attentive.yaml"},
			wantLines: 16,
			wantInOut: `"skip_reason":"blink_detected"`,
		},
		{
			name:      "with report",
			args:      []string{"run", "--report", "../../internal/replay/testdata/cancel.yaml"},
			wantInOut: `"pass_status"`,
		},
		{
			name:    "missing file",
			args:    []string{"run", "nope.yaml"},
			wantErr: true,
		},
		{
			name:    "missing argument",
			args:    []string{"run"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.wantInOut)
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantLines, strings.Count(out.String(), "\n"))
			}
		})
	}
}
