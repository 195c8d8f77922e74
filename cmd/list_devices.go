package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/achilleasa/lux/renderer"
	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/urfave/cli"
)

// List the CPUs available to the render workers.
func ListDevices(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	physical, err := cpu.Counts(false)
	if err != nil {
		return err
	}
	logical, err := cpu.Counts(true)
	if err != nil {
		return err
	}
	cpuInfo, err := cpu.Info()
	if err != nil {
		return err
	}
	vmem, err := mem.VirtualMemory()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"CPU", "Model", "Cores", "Clock", "Cache"})
	for _, info := range cpuInfo {
		table.Append([]string{
			fmt.Sprintf("%d", info.CPU),
			info.ModelName,
			fmt.Sprintf("%d", info.Cores),
			fmt.Sprintf("%.2f GHz", info.Mhz/1000),
			fmt.Sprintf("%d KB", info.CacheSize),
		})
	}
	table.SetFooter([]string{"", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), fmt.Sprintf("%d/%d", physical, logical), "", ""})
	table.Render()

	logger.Noticef(
		"system provides %d physical and %d logical cores and %d MB of memory (%d MB available); render workers default to %d\n%s",
		physical, logical, vmem.Total>>20, vmem.Available>>20, renderer.DetectWorkers(), buf.String(),
	)
	return nil
}
