// Sample dump tool - draws surface samples from a primitive and writes them
// as CSV, logging how the samples split across the dominant normal axes
// next to the split the surface area predicts.
//
// Usage: go run ./cmd/sampledump -primitive cube -count 10000 -out samples.csv
package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/dust/mesh"
	"github.com/pthm-cable/dust/sampler"
	"github.com/pthm-cable/dust/telemetry"
)

var axisNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

// axisBucket returns the index into axisNames of n's dominant axis.
func axisBucket(n mgl32.Vec3) int {
	best := 0
	for k := 1; k < 3; k++ {
		if abs(n[k]) > abs(n[best]) {
			best = k
		}
	}
	if n[best] < 0 {
		return best*2 + 1
	}
	return best * 2
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func main() {
	primitive := flag.String("primitive", "cube", "Primitive to sample: "+strings.Join(mesh.PrimitiveNames(), ", "))
	count := flag.Int("count", 10000, "Number of samples")
	seed := flag.Int64("seed", 1, "Sampler seed")
	scale := flag.Float64("scale", 1, "Uniform model scale")
	outPath := flag.String("out", "", "CSV output path (empty = stdout)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	m, err := mesh.Primitive(*primitive)
	if err != nil {
		slog.Error("unknown primitive", "error", err)
		os.Exit(1)
	}
	m.Transform.SetUniformScale(float32(*scale))
	m.Transform.UpdateWorldMatrix()

	set, err := sampler.Sample(m, *count, rand.New(rand.NewSource(*seed)))
	if err != nil {
		slog.Error("sampling failed", "error", err)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			slog.Error("failed to create output", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := telemetry.WriteSamplesCSV(out, set); err != nil {
		slog.Error("failed to write samples", "error", err)
		os.Exit(1)
	}

	var expected [6]float64
	for t := 0; t < m.TriangleCount(); t++ {
		expected[axisBucket(m.FaceNormal(t))] += float64(m.TriangleArea(t))
	}
	total := m.SurfaceArea()

	var got [6]int
	for i := 0; i < set.Len(); i++ {
		got[axisBucket(set.Normal(i))]++
	}

	for k, name := range axisNames {
		if expected[k] == 0 && got[k] == 0 {
			continue
		}
		slog.Info("axis",
			"axis", name,
			"samples", got[k],
			"fraction", float64(got[k])/float64(set.Len()),
			"area_fraction", expected[k]/total,
		)
	}
	slog.Info("done", "primitive", *primitive, "count", set.Len(), "surface_area", total)
}
