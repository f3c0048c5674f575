package core

import "fmt"

// Byte size constants for display formatting.
// VRAM capacities are marketed in decimal units, so the estimator reports
// decimal gigabytes (1 GB = 1e9 bytes) rather than GiB.
const (
	BytesPerKB int64 = 1_000
	BytesPerMB int64 = 1_000 * BytesPerKB
	BytesPerGB int64 = 1_000 * BytesPerMB
)

// BytesToGB converts a byte count to decimal gigabytes.
// This is a pure function with no side effects.
func BytesToGB(bytes float64) float64 {
	return bytes / float64(BytesPerGB)
}

// FormatBytes converts a byte count to a human-readable decimal string.
// Examples:
//   - FormatBytes(0) returns "0 B"
//   - FormatBytes(512) returns "512 B"
//   - FormatBytes(2_500_000) returns "2.50 MB"
//   - FormatBytes(2_632_400_000) returns "2.63 GB"
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}

	switch {
	case bytes >= BytesPerGB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(BytesPerGB))
	case bytes >= BytesPerMB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(BytesPerMB))
	case bytes >= BytesPerKB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(BytesPerKB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatGB formats a gigabyte value for display with two decimals.
func FormatGB(gb float64) string {
	return fmt.Sprintf("%.2f GB", gb)
}
