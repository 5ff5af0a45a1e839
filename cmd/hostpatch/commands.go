package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli"
	"golang.org/x/arch/x86/x86asm"

	"github.com/k2io/hostpatch/addrtable"
	"github.com/k2io/hostpatch/config"
	"github.com/k2io/hostpatch/internal/image"
	"github.com/k2io/hostpatch/memory"
)

var addrs = cli.Command{
	Name:  "addrs",
	Usage: "list the address table",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "image, i",
			Usage: "host executable; disassembles the first instruction of each routine",
		},
	},
	Action: func(c *cli.Context) error {
		var space memory.Space
		if name := c.String("image"); name != "" {
			img, err := image.Open(name)
			if err != nil {
				return err
			}
			buf, err := img.Space()
			if err != nil {
				return err
			}
			space = buf
		}
		return listAddrs(c.App.Writer, space)
	},
}

func listAddrs(w io.Writer, space memory.Space) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, e := range addrtable.Entries() {
		kind := e.Conv.String()
		if e.Kind == addrtable.Data {
			kind = "data"
		}
		sig := fmt.Sprintf("%s(%s)", e.Op, strings.Join(e.Params, ", "))
		if e.Result != "" {
			sig += " " + e.Result
		}
		line := fmt.Sprintf("%#08x\t%s\t%s", e.Addr, kind, sig)
		if space != nil && e.Kind == addrtable.Routine {
			line += "\t" + firstInst(space, e.Addr)
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func firstInst(space memory.Space, addr uintptr) (text string) {
	defer func() {
		// the address lies outside the image
		if recover() != nil {
			text = "?"
		}
	}()
	code := make([]byte, 16)
	space.ReadMemory(code, addr)
	inst, err := x86asm.Decode(code, 32)
	if err != nil {
		return "?"
	}
	return x86asm.IntelSyntax(inst, uint64(addr), nil)
}

var scan = cli.Command{
	Name:        "scan",
	Usage:       "find a byte pattern in a host executable",
	ArgsUsage:   "<file> <pattern>",
	Description: `pattern is IDA style hex, e.g. "55 8B EC ?? ?? 83 EC"; ?? matches any byte`,
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "exec, x",
			Usage: "only scan executable sections",
		},
		cli.IntFlag{
			Name:  "limit, n",
			Value: 16,
			Usage: "stop after n matches, 0 for no limit",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return cli.NewExitError("scan takes exactly 2 arguments: <file> <pattern>", 2)
		}
		pattern, mask, err := memory.ParsePattern(c.Args().Get(1))
		if err != nil {
			return err
		}
		img, err := image.Open(c.Args().Get(0))
		if err != nil {
			return err
		}
		matches, err := scanImage(img, pattern, mask, c.Bool("exec"), c.Int("limit"))
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return cli.NewExitError("no match", 1)
		}
		for _, m := range matches {
			if name, at, ok := img.Nearest(m); ok {
				fmt.Fprintf(c.App.Writer, "%#x\t%s+%#x\n", m, name, m-at)
			} else {
				fmt.Fprintf(c.App.Writer, "%#x\n", m)
			}
		}
		return nil
	},
}

func scanImage(img *image.Image, pattern []byte, mask string, execOnly bool, limit int) ([]uintptr, error) {
	buf, err := img.Space()
	if err != nil {
		return nil, err
	}
	lo, hi := img.Bounds(execOnly)
	var out []uintptr
	for start := lo; start+uintptr(len(pattern)) <= hi; {
		m := memory.FindPattern(buf, start, int(hi-start), pattern, mask)
		if m == 0 {
			break
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
		start = m + 1
	}
	return out, nil
}

var initConfig = cli.Command{
	Name:      "init-config",
	Usage:     "write a configuration file, filling in defaults for missing keys",
	ArgsUsage: "[path]",
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			path = "hostpatch.toml"
		}
		if _, err := config.Load(path); err != nil {
			return err
		}
		_, err := fmt.Fprintln(c.App.Writer, path)
		return err
	},
}

