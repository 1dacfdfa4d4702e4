package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valpere/sentinel/internal"
)

func TestCompose(t *testing.T) {
	assert.Equal(t, PositiveReply, Compose(internal.Positive))
	assert.Equal(t, NegativeReply, Compose(internal.Negative))
	assert.Equal(t, NeutralReply, Compose(internal.Neutral))
}

func TestCompose_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for _, l := range []internal.Label{internal.Positive, internal.Neutral, internal.Negative} {
		seen[Compose(l)] = true
	}
	assert.Len(t, seen, 3)
}
