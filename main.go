package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/achilleasa/lux/asset"
	"github.com/achilleasa/lux/cmd"
	"github.com/achilleasa/lux/filter"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "integrator",
			Value: "normal",
			Usage: "light transport algorithm (normal, ao)",
		},
		cli.Float64Flag{
			Name:  "ao-range",
			Value: 0,
			Usage: "ignore ambient occluders farther than this distance (0 = unlimited)",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 16,
			Usage: "samples per pixel",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 0,
			Usage: "sampler seed",
		},
		cli.Float64Flag{
			Name:  "yaw",
			Value: 0,
			Usage: "rotate the camera around its up axis (degrees)",
		},
		cli.Float64Flag{
			Name:  "pitch",
			Value: 0,
			Usage: "rotate the camera around its right axis (degrees)",
		},
	}

	bvhFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "serial-threshold",
			Value: 0,
			Usage: "build BVH ranges smaller than this many triangles on a single goroutine (0 = default)",
		},
		cli.BoolFlag{
			Name:  "no-compact",
			Usage: "keep the unused BVH node slots",
		},
		cli.BoolFlag{
			Name:  "verify-bvh",
			Usage: "check that concurrent BVH build tasks never touch overlapping ranges",
		},
	}

	renderFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "tile-size",
			Value: 32,
			Usage: "tile edge length in pixels",
		},
		cli.IntFlag{
			Name:  "workers, w",
			Value: 0,
			Usage: "number of render workers (0 = one per logical CPU)",
		},
		cli.StringFlag{
			Name:  "filter",
			Value: "gaussian",
			Usage: fmt.Sprintf("reconstruction filter (%s)", strings.Join(filter.Names(), ", ")),
		},
		cli.Float64Flag{
			Name:  "filter-radius",
			Value: 0,
			Usage: "reconstruction filter radius (0 = filter default)",
		},
		cli.StringFlag{
			Name:  "non-finite",
			Value: "strict",
			Usage: "handling of NaN/Inf samples (strict, lenient)",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "frame.png",
			Usage: "image filename for the rendered frame",
		},
	}
	renderFlags = append(renderFlags, sceneFlags...)
	renderFlags = append(renderFlags, bvhFlags...)

	sceneArgs := fmt.Sprintf("scene.obj | scene URL | built-in scene (%s)", strings.Join(asset.BuiltinNames(), ", "))

	app := cli.NewApp()
	app.Name = "lux"
	app.Usage = "render triangle mesh scenes on the CPU"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Load a scene, build a BVH to accelerate ray intersection tests and render
a frame using a pool of workers that process image tiles in a spiral order
starting from the frame center. The frame is written out as a PNG file.`,
			ArgsUsage: sceneArgs,
			Flags:     renderFlags,
			Action:    cmd.RenderFrame,
		},
		{
			Name:  "bvh",
			Usage: "build and validate the BVH for a scene",
			Description: `
Load a scene, build a BVH for its triangles, print the tree statistics and
check the structural invariants of the resulting tree.`,
			ArgsUsage: sceneArgs,
			Flags:     bvhFlags,
			Action:    cmd.BuildBVH,
		},
		{
			Name:   "list-devices",
			Usage:  "list the CPUs available for rendering",
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
