package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "text", want: Text},
		{in: "TXT", want: Text},
		{in: "srt", want: SRT},
		{in: " vtt ", want: VTT},
		{in: "json", want: JSON},
		{in: "verbose_json", want: VerboseJSON},
		{in: "verbose-json", want: VerboseJSON},
		{in: "docx", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKind_ExtensionAndTiming(t *testing.T) {
	tests := []struct {
		kind       Kind
		ext        string
		timed      bool
		structured bool
	}{
		{Text, ".txt", false, false},
		{SRT, ".srt", true, false},
		{VTT, ".vtt", true, false},
		{JSON, ".json", false, true},
		{VerboseJSON, ".json", false, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.ext, tc.kind.Extension())
			assert.Equal(t, tc.timed, tc.kind.Timed())
			assert.Equal(t, tc.structured, tc.kind.Structured())
		})
	}
}

func TestKinds_AllParse(t *testing.T) {
	for _, k := range Kinds() {
		got, err := Parse(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}
