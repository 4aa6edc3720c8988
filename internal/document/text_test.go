package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\nb\nc", NormalizeText("a\r\nb\rc"))
	assert.Equal(t, "A\nB", NormalizeText("A\nB"))
	assert.Equal(t, "ok�", NormalizeText("ok\xff"))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \n\t"))
	assert.False(t, IsBlank(" x "))
}
