package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2io/hostpatch/addrtable"
	"github.com/k2io/hostpatch/config"
	"github.com/k2io/hostpatch/internal/image"
	"github.com/k2io/hostpatch/memory"
)

func TestListAddrs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listAddrs(&out, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, len(addrtable.Entries()))
	assert.Contains(t, out.String(), "game.mainLoop(bool presentToWindow, HWND hwnd, int32 width, int32 height) int32")
	assert.Contains(t, out.String(), "data")
}

func TestListAddrsDisassembles(t *testing.T) {
	base := addrtable.Resolve(addrtable.GameInstall)
	buf := memory.NewBuffer(base, make([]byte, 0x100))
	buf.WriteMemory(base, []byte{0x55, 0x8b, 0xec})

	var out bytes.Buffer
	require.NoError(t, listAddrs(&out, buf))
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, string(addrtable.GameInstall)+"(") {
			assert.Contains(t, line, "push ebp")
		}
		if strings.Contains(line, string(addrtable.Present)+"(") {
			assert.True(t, strings.HasSuffix(strings.TrimSpace(line), "?"), line)
		}
	}
}

func TestScanImage(t *testing.T) {
	img := &image.Image{
		Sections: []image.Section{
			{Name: ".text", Addr: 0x401000, Data: []byte{0x90, 0x55, 0x8b, 0xec, 0x90, 0x55, 0x8b, 0xec, 0x83}, Exec: true},
			{Name: ".data", Addr: 0x402000, Data: []byte{0x55, 0x8b, 0xec}},
		},
		Symbols: map[string]uintptr{"start": 0x401000},
	}
	pattern, mask, err := memory.ParsePattern("55 8B ??")
	require.NoError(t, err)

	all, err := scanImage(img, pattern, mask, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []uintptr{0x401001, 0x401005, 0x402000}, all)

	code, err := scanImage(img, pattern, mask, true, 0)
	require.NoError(t, err)
	assert.Equal(t, []uintptr{0x401001, 0x401005}, code)

	first, err := scanImage(img, pattern, mask, false, 1)
	require.NoError(t, err)
	assert.Equal(t, []uintptr{0x401001}, first)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostpatch.toml")
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run([]string{"hostpatch", "init-config", path}))
	assert.Equal(t, path+"\n", out.String())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Core.Extensions, cfg.Core.Extensions)
}
