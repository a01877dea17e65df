package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"1.2.3", Version{Major: 1, Minor: 2, Patch: 3, Original: "1.2.3"}, false},
		{"v2.0.10", Version{Major: 2, Minor: 0, Patch: 10, Original: "v2.0.10"}, false},
		{" 0.1.0 ", Version{Major: 0, Minor: 1, Patch: 0, Original: " 0.1.0 "}, false},
		{"1.2", Version{}, true},
		{"1.2.3-beta", Version{}, true},
		{"abc", Version{}, true},
		{"", Version{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"1.3.0", "1.2.9", 1},
		{"1.2.3", "1.2.4", -1},
		{"bogus", "1.0.0", 0},
		{"1.0.0", "bogus", 0},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Compare(tc.a, tc.b), "Compare(%q, %q)", tc.a, tc.b)
	}
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("1.0.0", "1.0.1"))
	assert.False(t, IsNewer("1.0.1", "1.0.0"))
	assert.False(t, IsNewer("1.0.0", "1.0.0"))
	assert.False(t, IsNewer("1.0.0", "not-a-version"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("v10.20.30"))
	assert.False(t, IsValid("10.20"))
}
