package danton

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func grammageSampler(t *testing.T, cosLo, cosHi float64) *Sampler {
	t.Helper()
	s := &Sampler{
		CosThetaRange:  [2]float64{cosLo, cosHi},
		ElevationRange: [2]float64{1, 5},
		AltitudeRange:  [2]float64{0, 0},
		EnergyRange:    [2]float64{1e7, 1e12},
	}
	if err := s.Update(); err != nil {
		t.Fatalf("sampler.Update: %v", err)
	}
	return s
}

// TestGrammageStraightDown grounds spec.md §8 scenario 1: a single
// straight-down chord should integrate the model's PREM+USS density
// from the top of the atmosphere out through the far side, yielding a
// strictly positive grammage on the order of a planetary diameter's
// worth of rock.
func TestGrammageStraightDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammage.out")
	out, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	ctx, err := NewContext(out)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.Mode = Mode{Forward: true, Grammage: true}
	if err := ctx.AttachSampler(grammageSampler(t, 1, 1)); err != nil {
		t.Fatalf("AttachSampler: %v", err)
	}
	if err := ctx.Initialise("dummy.lhagrid1"); err != nil {
		t.Fatalf("Initialise: %v", err)
	}

	summary, err := ctx.Run(PDGNuTau, 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Requested != 1 || summary.Produced != 1 {
		t.Fatalf("expected one requested and one produced, got %+v", summary)
	}
	ctx.Finalise()
	out.Close()

	line := readLine(t, path, "grammage")
	fields := strings.Fields(line)
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields in a grammage line, got %d: %q", len(fields), line)
	}
	var cosTheta, grammage float64
	if _, err := fmt.Sscanf(fields[1], "%g", &cosTheta); err != nil {
		t.Fatalf("parsing cos theta: %v", err)
	}
	if _, err := fmt.Sscanf(fields[2], "%g", &grammage); err != nil {
		t.Fatalf("parsing grammage: %v", err)
	}
	if cosTheta != 1 {
		t.Fatalf("expected cos theta = 1, got %g", cosTheta)
	}
	if grammage <= 0 {
		t.Fatalf("expected a strictly positive grammage, got %g", grammage)
	}
}

// TestGrammageHorizontalGridProducesArithmeticProgression grounds
// spec.md §8 scenario 2: 11 grid points evenly spaced across the
// sampler's cos theta range.
func TestGrammageHorizontalGridProducesArithmeticProgression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammage.out")
	out, err := NewWriter(path, false)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	ctx, err := NewContext(out)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	ctx.Mode = Mode{Forward: true, Grammage: true}
	if err := ctx.AttachSampler(grammageSampler(t, 0.15, 0.25)); err != nil {
		t.Fatalf("AttachSampler: %v", err)
	}
	if err := ctx.Initialise("dummy.lhagrid1"); err != nil {
		t.Fatalf("Initialise: %v", err)
	}

	summary, err := ctx.Run(PDGNuTau, 11)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Produced != 11 {
		t.Fatalf("expected 11 produced lines, got %d", summary.Produced)
	}
	ctx.Finalise()
	out.Close()

	lines := readLines(t, path, "grammage")
	if len(lines) != 11 {
		t.Fatalf("expected 11 grammage lines, got %d", len(lines))
	}
	var prev float64
	for i, line := range lines {
		fields := strings.Fields(line)
		var cosTheta float64
		if _, err := fmt.Sscanf(fields[1], "%g", &cosTheta); err != nil {
			t.Fatalf("parsing cos theta on line %d: %v", i, err)
		}
		if i > 0 && cosTheta <= prev {
			t.Fatalf("cos theta grid not increasing at line %d: %g <= %g", i, cosTheta, prev)
		}
		prev = cosTheta
	}
}

func readLines(t *testing.T, path, tag string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), tag) {
			out = append(out, line)
		}
	}
	return out
}

func readLine(t *testing.T, path, tag string) string {
	t.Helper()
	lines := readLines(t, path, tag)
	if len(lines) == 0 {
		t.Fatalf("no %q line found in %s", tag, path)
	}
	return lines[0]
}
