package stl

import (
	"fmt"
	"math"
)

// Estimate describes an export before any geometry is built.
type Estimate struct {
	FileSizeBytes      int     `json:"file_size_bytes"`
	FileSizeMB         float64 `json:"file_size_mb"`
	EstimatedTriangles int     `json:"estimated_triangles"`
	EstimatedPrintTime string  `json:"estimated_print_time"`
}

// TriangleCount returns the exact triangle count a resolution x
// resolution surface produces: two per grid cell, doubled plus four
// walls when a base closes the solid.
func TriangleCount(resolution int, addBase bool) int {
	top := 2 * (resolution - 1) * (resolution - 1)
	if !addBase {
		return top
	}
	return 2*top + 8*(resolution-1)
}

// FileSize returns the exact binary STL size in bytes.
func FileSize(resolution int, addBase bool) int {
	return headerSize + 4 + TriangleCount(resolution, addBase)*triangleSize
}

// PrintTime estimates FDM print duration: two hours at resolution 128
// and scale 1, growing quadratically with both.
func PrintTime(resolution int, scale float64) string {
	hours := 2.0 * math.Pow(float64(resolution)/128.0, 2) * scale * scale
	if hours < 1.0 {
		return fmt.Sprintf("%d minutes", int(hours*60))
	}
	return fmt.Sprintf("%.1f hours", hours)
}

// ComputeEstimate bundles size and print-time predictions for the
// estimate endpoint. The triangle figure is derived back from the
// byte size, matching the public contract.
func ComputeEstimate(resolution int, addBase bool, scale float64) Estimate {
	size := FileSize(resolution, addBase)
	return Estimate{
		FileSizeBytes:      size,
		FileSizeMB:         math.Round(float64(size)/1024.0/1024.0*100) / 100,
		EstimatedTriangles: size / triangleSize,
		EstimatedPrintTime: PrintTime(resolution, scale),
	}
}
