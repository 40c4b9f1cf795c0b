package collectors

import (
	"context"
	"strings"
)

// Inspection commands for fields with no structured source.
const (
	cpuModelCommand   = "lscpu"
	memoryTypeCommand = "dmidecode -t memory"
	gpuCommand        = "lspci"
)

// UnknownCPUModel is reported when lscpu yields no model name.
const UnknownCPUModel = "Unknown"

// HardwareCollector reports CPU, memory and GPU details.
type HardwareCollector struct {
	sys System
	sh  Shell
}

// NewHardwareCollector creates a HardwareCollector.
func NewHardwareCollector(sys System, sh Shell) *HardwareCollector {
	return &HardwareCollector{sys: sys, sh: sh}
}

// Collect gathers counts and memory from structured queries and the model,
// memory type and GPU strings from inspection commands.
func (c *HardwareCollector) Collect(ctx context.Context) (Hardware, error) {
	p := &partial{fragment: FragmentHardware}
	hw := Hardware{
		CPUModel:    UnknownCPUModel,
		MemoryTotal: formatGB(0),
		MemoryUsed:  formatGB(0),
	}

	if cores, err := c.sys.CPUCounts(ctx, false); err != nil {
		p.add("cpu physical count", err)
	} else if cores > 0 {
		hw.CPUCores = cores
	}

	if threads, err := c.sys.CPUCounts(ctx, true); err != nil {
		p.add("cpu logical count", err)
	} else if threads > 0 {
		hw.CPUThreads = threads
	}

	if infos, err := c.sys.CPUInfo(ctx); err != nil {
		p.add("cpu frequency", err)
	} else if len(infos) > 0 && infos[0].Mhz > 0 {
		hw.CPUFrequency = optional(formatFloat(infos[0].Mhz) + " MHz")
	}

	if vmem, err := c.sys.VirtualMemory(ctx); err != nil {
		p.add("virtual memory", err)
	} else {
		hw.MemoryTotal = formatGB(vmem.Total)
		hw.MemoryUsed = formatGB(vmem.Used)
	}

	res := c.sh.Run(ctx, cpuModelCommand)
	p.add(cpuModelCommand, res.Err)
	if model := labeledField(res.Text(), "Model name"); model != "" {
		hw.CPUModel = model
	}

	res = c.sh.Run(ctx, memoryTypeCommand)
	p.add(memoryTypeCommand, res.Err)
	hw.MemoryType = optional(labeledField(res.Text(), "Type", "Unknown", "Other"))

	res = c.sh.Run(ctx, gpuCommand)
	p.add(gpuCommand, res.Err)
	hw.GPUModel = optional(firstDisplayAdapter(res.Text()))

	return hw, p.err()
}

// firstDisplayAdapter returns the device description of the first lspci line
// whose class is a VGA, 3D or 2D display controller.
func firstDisplayAdapter(lspci string) string {
	for _, line := range strings.Split(lspci, "\n") {
		// "00:02.0 VGA compatible controller: Intel Corporation UHD Graphics 620"
		_, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		class, _, ok := strings.Cut(rest, ": ")
		if !ok {
			continue
		}
		class = strings.ToLower(class)
		if !strings.Contains(class, "vga") && !strings.Contains(class, "3d") && !strings.Contains(class, "2d") {
			continue
		}
		if i := strings.LastIndex(line, ": "); i >= 0 {
			return strings.TrimSpace(line[i+2:])
		}
	}
	return ""
}
