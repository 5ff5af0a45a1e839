package main

import (
	"log"
	"os"

	"github.com/urfave/cli"
)

const usage = `hostpatch inspects the host build offline: the fixed address table,
             byte pattern scans and the default configuration`

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "hostpatch"
	app.Usage = usage
	app.Commands = []cli.Command{
		addrs,
		scan,
		initConfig,
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
