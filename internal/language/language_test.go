package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "en", want: "en"},
		{in: " EN ", want: "en"},
		{in: "en_US", want: "en"},
		{in: "pt-BR", want: "pt"},
		{in: "zh-Hans", want: "zh"},
		{in: "", want: ""},
		{in: "auto", want: ""},
		{in: "xx-not-a-tag!", wantErr: true},
		{in: "gd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromCode(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		wantName string
	}{
		{"en", "en", "English"},
		{"es", "es", "Spanish"},
		{"zh", "zh", "Chinese"},
		{"invalid", "", "Auto-detect"},
		{"", "", "Auto-detect"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := FromCode(tt.code)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestNativeName(t *testing.T) {
	assert.NotEmpty(t, FromCode("ja").NativeName)
	assert.Equal(t, "English", FromCode("en").NativeName)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Spanish (es)", Label("es"))
	assert.Equal(t, "German (de)", Label("de-AT"))
	assert.Equal(t, "Auto-detect", Label(""))
}

func TestListAndCodes(t *testing.T) {
	list := List()
	assert.Len(t, list, len(Codes()))
	for i := 1; i < len(list); i++ {
		assert.LessOrEqual(t, list[i-1].Name, list[i].Name)
	}

	codes := Codes()
	codes[0] = "mutated"
	assert.NotEqual(t, "mutated", Codes()[0])
	assert.True(t, IsValidCode("fr"))
	assert.False(t, IsValidCode("klingon"))
}
