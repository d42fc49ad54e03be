package main

import (
	"os"

	"github.com/tphakala/mediaseed/cmd"
	"github.com/tphakala/mediaseed/internal/buildinfo"
	"github.com/tphakala/mediaseed/internal/conf"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   string
	buildDate string
)

func main() {
	settings := &conf.Settings{}
	if err := cmd.Execute(settings, buildinfo.New(version, buildDate), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
