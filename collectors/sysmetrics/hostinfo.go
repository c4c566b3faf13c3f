package sysmetrics

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
)

// HostInfo is static host identification, read once at startup.
type HostInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Kernel        string `json:"kernel"`
	CPUModel      string `json:"cpu_model"`
	PhysicalCores int    `json:"physical_cores"`
	LogicalCores  int    `json:"logical_cores"`
}

// ReadHostInfo gathers HostInfo. Fields that cannot be read are left empty;
// an error is returned only when the host query itself fails.
func ReadHostInfo(ctx context.Context) (HostInfo, error) {
	hi, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostInfo{}, fmt.Errorf("host info: %w", err)
	}

	info := HostInfo{
		Hostname: hi.Hostname,
		OS:       osLabel(hi.Platform, hi.PlatformVersion, hi.OS),
		Kernel:   kernelVersion(),
	}
	if info.Kernel == "" {
		info.Kernel = hi.KernelVersion
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = strings.TrimSpace(cpus[0].ModelName)
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		info.PhysicalCores = n
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.LogicalCores = n
	}

	return info, nil
}

// osLabel builds "Platform Version", falling back to the GOOS-style name.
func osLabel(platform, version, goos string) string {
	switch {
	case platform != "" && version != "":
		return platform + " " + version
	case platform != "":
		return platform
	default:
		return goos
	}
}
