//go:build windows

package sysmetrics

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// kernelVersion returns the NT version reported by RtlGetVersion.
func kernelVersion() string {
	v := windows.RtlGetVersion()
	if v == nil {
		return ""
	}
	return fmt.Sprintf("Windows NT %d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber)
}
