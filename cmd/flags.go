package cmd

import (
	"fmt"
	"math"

	"github.com/urfave/cli"
)

// Read an integer flag that must fit in an uint32.
func uintFlag(ctx *cli.Context, name string) (uint32, error) {
	val := ctx.Int(name)
	if val < 0 || int64(val) > math.MaxUint32 {
		return 0, fmt.Errorf("invalid value %d for flag --%s; expected a non-negative integer", val, name)
	}
	return uint32(val), nil
}
