package danton

import "testing"

func TestStepFloorsAtMinimum(t *testing.T) {
	e := NewEarthModel()
	pos := [3]float64{6371000, 0, 0}
	dir := [3]float64{1, 0, 0} // radially outward, exactly on a shell boundary
	step, idx := e.Step(pos, dir, false)
	if idx < 0 {
		t.Fatalf("expected a valid shell index, got %d", idx)
	}
	if step < minStep {
		t.Fatalf("step %g below floor %g", step, minStep)
	}
}

func TestStepExitsBeyondRMax(t *testing.T) {
	e := NewEarthModel()
	pos := [3]float64{rMax * 2, 0, 0}
	dir := [3]float64{1, 0, 0}
	step, idx := e.Step(pos, dir, true)
	if idx != -1 || step != 0 {
		t.Fatalf("expected exit (0, -1), got (%g, %d)", step, idx)
	}
}

func TestNeutrinoExitsAboveAtmosphere(t *testing.T) {
	e := NewEarthModel()
	pos := [3]float64{earthRadius + 200000, 0, 0}
	dir := [3]float64{1, 0, 0}
	step, idx := e.Step(pos, dir, false)
	if idx != -1 || step != 0 {
		t.Fatalf("expected neutrino exit above atmosphere, got (%g, %d)", step, idx)
	}
}

func TestChargedLeptonContinuesAboveAtmosphere(t *testing.T) {
	e := NewEarthModel()
	pos := [3]float64{earthRadius + 200000, 0, 0}
	dir := [3]float64{1, 0, 0}
	_, idx := e.Step(pos, dir, true)
	if idx == -1 {
		t.Fatalf("charged lepton should keep transporting above the atmosphere")
	}
}

func TestAtmosphereShellsAreTenThroughThirteen(t *testing.T) {
	e := NewEarthModel()
	for i := 10; i <= 13; i++ {
		if e.Material(i) != MaterialAir {
			t.Fatalf("shell %d expected air, got %v", i, e.Material(i))
		}
	}
}

func TestSeaOverrideAliasesToRock(t *testing.T) {
	e := NewEarthModel()
	if e.Material(9) != MaterialWater {
		t.Fatalf("expected the sea shell to start as water")
	}
	e.OverrideSea(true)
	if e.Material(9) != e.Material(8) {
		t.Fatalf("sea shell should alias shell 8's material when overridden")
	}
	e.OverrideSea(false)
	if e.Material(9) != MaterialWater {
		t.Fatalf("disabling the override should restore water")
	}
}

func TestDensityDecreasesWithAltitudeInAtmosphere(t *testing.T) {
	e := NewEarthModel()
	low := e.DensityAt(10, earthRadius+1000)
	high := e.DensityAt(13, earthRadius+90000)
	if !(low > high) {
		t.Fatalf("expected density to decrease with altitude: low=%g high=%g", low, high)
	}
}
