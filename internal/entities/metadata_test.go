package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_CloneDoesNotShare(t *testing.T) {
	base := Metadata{"item_id": "a", "cast_level": 1}

	c := base.Clone()
	c["cast_level"] = 3
	c["slot"] = "spell3"

	assert.Equal(t, 1, base["cast_level"])
	assert.NotContains(t, base, "slot")

	var empty Metadata
	assert.Nil(t, empty.Clone())
}
