package idgen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/rpg-muncher/internal/pkg/idgen"
)

func TestSequentialGenerator(t *testing.T) {
	gen := idgen.NewSequential("effect")
	assert.Equal(t, "effect_1", gen.Generate())
	assert.Equal(t, "effect_2", gen.Generate())

	bare := idgen.NewSequential("")
	assert.Equal(t, "1", bare.Generate())
}

func TestUUIDGenerator(t *testing.T) {
	gen := idgen.NewUUID("")
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)

	assert.Regexp(t, `^fx_[0-9a-f-]{36}$`, idgen.NewUUID("fx").Generate())
}

func TestStable(t *testing.T) {
	assert.Equal(t, idgen.Stable("items", "4567"), idgen.Stable("items", "4567"))
	assert.NotEqual(t, idgen.Stable("items", "4567"), idgen.Stable("monsters", "4567"))
	assert.Len(t, idgen.Stable("x"), 36)
}
