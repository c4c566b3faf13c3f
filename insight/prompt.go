package insight

import (
	"fmt"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
	"gitlab.com/tinyland/lab/sysinsight/internal/format"
)

// promptTemplate is sent verbatim apart from the DATA values. The model's
// output structure depends on it, so wording changes alter every insight.
const promptTemplate = `You are a system diagnostics expert. Analyze this system snapshot and provide a concise, actionable explanation focusing on potential performance issues. Consider high CPU load (>80%%), high memory usage (>90%%), high disk usage (>90%%), or unusual process behavior.

DATA:
CPU Load: %.1f%%
Memory Usage: %s / %s (%.1f%%)
Disk Usage: %s / %s (%.1f%%)
Top CPU Process: %s
Total Processes: %d

Provide the response in markdown format with the following structure:
## Title
**Likely Causes:**
* cause
**Suggested Actions:**
* action

Keep the response concise (150-300 words) and prioritize actionable insights.`

// noProcess stands in for the top process name when none was recorded.
const noProcess = "N/A"

// BuildPrompt renders snap into the prompt sent to the model. It returns
// ErrInvalidMetrics when the memory or disk total is zero.
func BuildPrompt(snap collectors.SystemSnapshot) (string, error) {
	mem := snap.Memory()
	if mem.TotalBytes == 0 {
		return "", fmt.Errorf("%w: memory total is zero", ErrInvalidMetrics)
	}
	disk := snap.Disk()
	if disk.TotalBytes == 0 {
		return "", fmt.Errorf("%w: disk total is zero (drive %s)", ErrInvalidMetrics, disk.DriveLabel)
	}

	top := noProcess
	if p, ok := snap.TopProcess(); ok {
		top = p.Name
	}

	return fmt.Sprintf(promptTemplate,
		snap.CPU().Load,
		format.Bytes(mem.UsedBytes), format.Bytes(mem.TotalBytes), format.Percent(mem.UsedBytes, mem.TotalBytes),
		format.Bytes(disk.UsedBytes), format.Bytes(disk.TotalBytes), format.Percent(disk.UsedBytes, disk.TotalBytes),
		top,
		snap.ProcessCount(),
	), nil
}
