package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewBuildID(t *testing.T) {
	id1 := NewBuildID()
	id2 := NewBuildID()

	assert.False(t, id1.IsZero(), "new ID should not be zero")
	assert.False(t, id1.Equals(id2), "two new IDs should be different")
	assert.Len(t, id1.Short(), 8)
}

func Test_ParseBuildID(t *testing.T) {
	valid := "123e4567-e89b-12d3-a456-426614174000"

	id, err := ParseBuildID(valid)
	require.NoError(t, err)
	assert.Equal(t, valid, id.String())
	assert.Equal(t, "123e4567", id.Short())
}

func Test_ParseBuildID_Invalid(t *testing.T) {
	for _, in := range []string{"", "invalid", "123"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseBuildID(in)
			assert.Error(t, err)
		})
	}
}

func Test_MustParseBuildID_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustParseBuildID("invalid")
	})
}

func Test_BuildID_JSON(t *testing.T) {
	original := NewBuildID()

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded BuildID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equals(decoded))

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &decoded))
}
