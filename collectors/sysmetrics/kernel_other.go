//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package sysmetrics

// kernelVersion returns "" on unsupported platforms; ReadHostInfo falls back
// to gopsutil's kernel string.
func kernelVersion() string {
	return ""
}
