package format

import "fmt"

// byteUnits are the binary prefixes used by Bytes, one per power of 1024.
const byteUnits = "KMGTPE"

// Bytes renders a byte count with one decimal in binary units.
// Returns strings like "512 B", "1.5 KB", "15.9 GB".
func Bytes(b uint64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}

	div, exp := uint64(1024), 0
	for n := b / 1024; n >= 1024 && exp < len(byteUnits)-1; n /= 1024 {
		div *= 1024
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), byteUnits[exp])
}

// Percent returns part as a percentage of total. A zero total yields 0.
func Percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100.0
}
