package cmd

import (
	"github.com/achilleasa/lux/log"
	"github.com/urfave/cli"
)

var logger = log.New("lux")

func setupLogging(ctx *cli.Context) error {
	if level := ctx.GlobalString("log-level"); level != "" {
		lvl, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	return nil
}
