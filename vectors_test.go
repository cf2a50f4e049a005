package danton

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestCrossBasis(t *testing.T) {
	i := [3]float64{1, 0, 0}
	j := [3]float64{0, 1, 0}
	k := [3]float64{0, 0, 1}
	if Cross(i, j) != k {
		t.Fatalf("i x j != k, got %v", Cross(i, j))
	}
	if Cross(j, k) != i {
		t.Fatalf("j x k != i, got %v", Cross(j, k))
	}
}

func TestUnitZero(t *testing.T) {
	u := Unit([3]float64{0, 0, 0})
	if u != ([3]float64{}) {
		t.Fatalf("expected zero vector, got %v", u)
	}
}

func TestIsUnit(t *testing.T) {
	v := Unit([3]float64{3, 4, 0})
	if !IsUnit(v, 1e-9) {
		t.Fatalf("expected unit vector, norm=%f", Norm(v))
	}
}

func TestR1R2R3Identity(t *testing.T) {
	x := math.Pi / 3.0
	s, c := math.Sincos(x)
	r1, r2, r3 := R1(x), R2(x), R3(x)
	if r1.At(0, 0) != 1 || r2.At(1, 1) != 1 || r3.At(2, 2) != 1 {
		t.Fatal("expected diagonal identity entries for the rotation axis")
	}
	if !floats.EqualWithinAbs(r1.At(1, 1), c, 1e-12) || !floats.EqualWithinAbs(r1.At(1, 2), s, 1e-12) {
		t.Fatal("R1 cos/sin misplaced")
	}
}

func TestDirectionFromElevationIsUnit(t *testing.T) {
	d := DirectionFromElevation(Deg2rad(45), Deg2rad(10), Deg2rad(3), Deg2rad(120))
	if !IsUnit(d, 1e-9) {
		t.Fatalf("direction not unit: norm=%f", Norm(d))
	}
}

func TestDeg2radRad2deg(t *testing.T) {
	if !floats.EqualWithinAbs(Rad2deg(Deg2rad(42)), 42, 1e-9) {
		t.Fatal("round trip failed")
	}
}
