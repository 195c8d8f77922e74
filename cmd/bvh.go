package cmd

import (
	"fmt"
	"time"

	"github.com/achilleasa/lux/bvh"
	"github.com/achilleasa/lux/geometry"
	"github.com/urfave/cli"
)

// Build a BVH for a scene, display its statistics and validate it.
func BuildBVH(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	model, err := loadModel(ctx)
	if err != nil {
		return err
	}

	meshes, err := geometry.NewMeshSet(model.Meshes...)
	if err != nil {
		return err
	}

	logger.Noticef("building BVH for %d meshes with %d triangles", len(model.Meshes), meshes.TriangleCount())
	tree, err := bvh.Build(meshes, bvhOptions(ctx))
	if err != nil {
		return err
	}
	logger.Noticef("BVH statistics\n%s", tree.Stats().Table())

	start := time.Now()
	if err = tree.Validate(); err != nil {
		return fmt.Errorf("BVH validation failed: %w", err)
	}
	logger.Noticef("validated BVH in %d ms", time.Since(start).Milliseconds())

	return nil
}
