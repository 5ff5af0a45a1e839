package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPattern(t *testing.T) {
	b := newTestBuffer()
	code := []byte{0x55, 0x8B, 0xEC, 0x83, 0xEC, 0x10, 0xA1, 0x30, 0x88, 0x90, 0x01, 0xC3}
	b.WriteMemory(testBase+0x123, code)

	pattern, mask, err := ParsePattern("83 EC ?? A1 ?? ?? ?? 01 C3")
	require.NoError(t, err)
	assert.Equal(t, "xx?x???xx", mask)

	assert.Equal(t, testBase+0x126, FindPattern(b, testBase, b.Len(), pattern, mask))
}

func TestFindPatternNoMatch(t *testing.T) {
	b := newTestBuffer()
	assert.Equal(t, uintptr(0), FindPattern(b, testBase, b.Len(), []byte{0xDE, 0xAD, 0xBE, 0xEF}, "xxxx"))
	// window too small for the pattern
	b.WriteMemory(testBase, []byte{0xDE, 0xAD})
	assert.Equal(t, uintptr(0), FindPattern(b, testBase, 1, []byte{0xDE, 0xAD}, ""))
	// mask of the wrong length
	assert.Equal(t, uintptr(0), FindPattern(b, testBase, b.Len(), []byte{0xDE, 0xAD}, "x"))
}

func TestFindPatternWindow(t *testing.T) {
	b := newTestBuffer()
	b.WriteMemory(testBase+0x10, []byte{1, 2, 3})
	b.WriteMemory(testBase+0x80, []byte{1, 2, 3})

	assert.Equal(t, testBase+0x10, FindPattern(b, testBase, 0x100, []byte{1, 2, 3}, ""))
	assert.Equal(t, testBase+0x80, FindPattern(b, testBase+0x11, 0x100, []byte{1, 2, 3}, ""))
	assert.Equal(t, uintptr(0), FindPattern(b, testBase+0x11, 0x71, []byte{1, 2, 3}, ""))
}

func TestParsePatternErrors(t *testing.T) {
	_, _, err := ParsePattern("")
	assert.ErrorIs(t, err, ErrBadPattern)
	_, _, err = ParsePattern("48 XY")
	assert.ErrorIs(t, err, ErrBadPattern)
	_, _, err = ParsePattern("480")
	assert.ErrorIs(t, err, ErrBadPattern)
}
