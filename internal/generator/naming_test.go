package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	cases := map[string]string{
		"Fire":    "fire",
		"GdFire":  "gd_fire",
		"PLayers": "p_layers",
		"UI":      "u_i",
		"Vec2":    "vec2",
		"IShape":  "i_shape",
		"already": "already",
		"A":       "a",
		"":        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Snake(in), "Snake(%q)", in)
	}
}
