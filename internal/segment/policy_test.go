package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const mib = 1024 * 1024

func TestPolicy_Resolve(t *testing.T) {
	p := NewPolicy(25 * mib)

	tests := []struct {
		name      string
		source    int64
		converted int64
		want      Decision
	}{
		{name: "small source", source: 10 * mib, want: Direct},
		{name: "exactly at ceiling", source: 25 * mib, want: Direct},
		{name: "conversion is enough", source: 40 * mib, converted: 18 * mib, want: Convert},
		{name: "converted exactly at ceiling", source: 40 * mib, converted: 25 * mib, want: Convert},
		{name: "conversion not enough", source: 300 * mib, converted: 60 * mib, want: ConvertAndSplit},
		{name: "one byte over", source: 25*mib + 1, converted: 25*mib + 1, want: ConvertAndSplit},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Resolve(tc.source, tc.converted))
		})
	}
}

func TestPolicy_ClassifyNeverSplitsBeforeConversion(t *testing.T) {
	p := NewPolicy(mib)
	assert.Equal(t, Convert, p.Classify(1000*mib))
}

func TestNewPolicy_Default(t *testing.T) {
	assert.Equal(t, DefaultMaxBytes, NewPolicy(0).MaxBytes)
	assert.Equal(t, DefaultMaxBytes, NewPolicy(-1).MaxBytes)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "direct", Direct.String())
	assert.Equal(t, "convert", Convert.String())
	assert.Equal(t, "convert+split", ConvertAndSplit.String())
	assert.Equal(t, "decision(9)", Decision(9).String())
}
