package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizer_Clean(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		input   string
		want    string
		wantErr error
	}{
		{name: "Plain", input: "I need a laptop", want: "I need a laptop"},
		{name: "Keeps Whitespace Controls", input: "line1\n\tline2\r", want: "line1\n\tline2\r"},
		{name: "Strips ANSI Escape", input: "\x1b[31mlaptop\x1b[0m", want: "[31mlaptop[0m"},
		{name: "Strips NUL And BEL", input: "lap\x00top\a", want: "laptop"},
		{name: "Invalid UTF-8", input: "lap\xfftop", wantErr: ErrInvalidUTF8},
		{name: "Too Large", max: 8, input: "a much longer message", wantErr: ErrTooLarge},
		{name: "Default Limit", input: strings.Repeat("x", DefaultMaxSize+1), wantErr: ErrTooLarge},
		{name: "Exactly At Limit", max: 6, input: "laptop", want: "laptop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitizer{MaxSize: tt.max}.Clean(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
