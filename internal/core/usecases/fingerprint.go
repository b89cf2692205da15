package usecases

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/arjunrs/saferoutes/internal/core/domain"
)

// Fingerprint hashes five evenly spaced points of a polyline, rounded to
// 4 decimal places, giving a stable identity for geometrically
// near-identical routes. Returns "" for degenerate polylines.
func Fingerprint(points []domain.GeoPoint) string {
	if len(points) < 2 {
		return ""
	}

	n := len(points)
	indices := [5]int{0, n / 4, n / 2, 3 * n / 4, n - 1}

	var sb strings.Builder
	for _, i := range indices {
		p := points[i]
		fmt.Fprintf(&sb, "%.4f,%.4f", p.Lat, p.Lon)
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// samplePoints downsamples a polyline to at most max evenly spaced points.
func samplePoints(points []domain.GeoPoint, max int) []domain.GeoPoint {
	if len(points) <= max {
		return points
	}
	stride := (len(points) + max - 1) / max
	sampled := make([]domain.GeoPoint, 0, max)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
	}
	return sampled
}
