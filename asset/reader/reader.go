// Package reader parses scene files into asset models.
package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/lux/asset"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*asset.Model, error)
}

// Read a model from a local file or a http(s) URL.
func ReadModel(filename string) (*asset.Model, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".obj"):
		reader = newWavefrontReader()
	default:
		return nil, fmt.Errorf("readModel: unsupported file format for %q", filename)
	}
	return reader.Read(res)
}
