package astro

import (
	"math"
	"testing"
)

func isFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func TestObserverFrameOrthonormal(t *testing.T) {
	const eps = 1e-12
	planetPos := Vec3{-9.8, 0, 0.5}

	for _, lat := range []float64{-90, -45, 0, 39.9, 90} {
		for _, lon := range []float64{-180, -30, 0, 116.4, 179} {
			for _, spin := range []float64{0, 1.3, -4} {
				for _, tilt := range []float64{0, 23.5, -60} {
					geo := GeoCoordinate{LatDeg: lat, LonDeg: lon}
					f := ObserverFrameAt(geo, 0.5, planetPos, spin, DegToRad(tilt), AxisY)

					for name, v := range map[string]Vec3{"up": f.Up, "south": f.South, "east": f.East} {
						if !isFinite(v) {
							t.Fatalf("%v: %s = %v is not finite", geo, name, v)
						}
						if math.Abs(v.Len()-1) > eps {
							t.Errorf("%v spin %v tilt %v: |%s| = %v", geo, spin, tilt, name, v.Len())
						}
					}
					if d := f.Up.Dot(f.South); math.Abs(d) > eps {
						t.Errorf("%v: up·south = %v", geo, d)
					}
					if d := f.Up.Dot(f.East); math.Abs(d) > eps {
						t.Errorf("%v: up·east = %v", geo, d)
					}
					if d := f.South.Dot(f.East); math.Abs(d) > eps {
						t.Errorf("%v: south·east = %v", geo, d)
					}
					if f.East.Cross(f.Up).Sub(f.South).Len() > 1e-9 {
						t.Errorf("%v: east×up = %v, want south %v", geo, f.East.Cross(f.Up), f.South)
					}
					if r := f.Position.Sub(planetPos).Len(); math.Abs(r-0.5) > eps {
						t.Errorf("%v: distance from centre = %v, want 0.5", geo, r)
					}
				}
			}
		}
	}
}

func TestObserverFrameSpinThenTilt(t *testing.T) {
	geo := GeoCoordinate{LatDeg: 39.9, LonDeg: 116.4}
	spin, tilt := 1.0, DegToRad(23.5)
	local := SurfaceLocal(geo, 0.5, AxisY)

	f := ObserverFrameAt(geo, 0.5, Vec3{}, spin, tilt, AxisY)
	want := RotateAbout(RotateAbout(local.Point, AxisY, spin), AxisZ, tilt)
	if f.Offset.Sub(want).Len() > 1e-12 {
		t.Errorf("Offset = %v, want spin-then-tilt %v", f.Offset, want)
	}

	reversed := RotateAbout(RotateAbout(local.Point, AxisZ, tilt), AxisY, spin)
	if f.Offset.Sub(reversed).Len() < 1e-3 {
		t.Errorf("Offset %v should differ from tilt-then-spin %v", f.Offset, reversed)
	}
}

func TestSurfaceLocalMeridianAzimuth(t *testing.T) {
	for _, lon := range []float64{-150, -90, 0, 45, 116.4, 179.5} {
		local := SurfaceLocal(GeoCoordinate{LatDeg: 39.9, LonDeg: lon}, 1, AxisY)
		az := RadToDeg(math.Atan2(local.Point.X(), local.Point.Z()))

		if d := math.Abs(Wrap(az-lon+180, 360) - 180); d > 1e-9 {
			t.Errorf("lon %v: meridian azimuth = %v", lon, az)
		}
	}
}

func TestSurfaceLocalLatitude(t *testing.T) {
	tests := []struct {
		lat   float64
		wantY float64
	}{
		{90, 1},
		{30, 0.5},
		{0, 0},
		{-90, -1},
	}
	for _, tt := range tests {
		local := SurfaceLocal(GeoCoordinate{LatDeg: tt.lat, LonDeg: 10}, 1, AxisY)
		if math.Abs(local.Point.Y()-tt.wantY) > 1e-12 {
			t.Errorf("lat %v: y = %v, want %v", tt.lat, local.Point.Y(), tt.wantY)
		}
		// south points down-slope in Y except at the south pole
		if tt.lat > -90 && local.South.Y() >= 0 && tt.lat != 90 {
			t.Errorf("lat %v: south = %v, want negative Y", tt.lat, local.South)
		}
	}
}

func TestSurfaceLocalZeroRadius(t *testing.T) {
	fallback := Vec3{0, 0, 1}
	local := SurfaceLocal(GeoCoordinate{LatDeg: 20, LonDeg: 20}, 0, fallback)
	if local.Up != fallback {
		t.Errorf("Up = %v, want fallback %v", local.Up, fallback)
	}
}

func TestGeoCoordinateClamp(t *testing.T) {
	tests := []struct {
		name    string
		in      GeoCoordinate
		wantLat float64
		wantLon float64
	}{
		{"in range", GeoCoordinate{LatDeg: 39.9, LonDeg: 116.4}, 39.9, 116.4},
		{"lat high", GeoCoordinate{LatDeg: 120}, 90, 0},
		{"lat low", GeoCoordinate{LatDeg: -95}, -90, 0},
		{"lat NaN", GeoCoordinate{LatDeg: math.NaN()}, 0, 0},
		{"lon wraps east", GeoCoordinate{LonDeg: 190}, 0, -170},
		{"lon 180", GeoCoordinate{LonDeg: 180}, 0, -180},
		{"lon -180", GeoCoordinate{LonDeg: -180}, 0, -180},
		{"lon wraps west", GeoCoordinate{LonDeg: -200}, 0, 160},
		{"lon NaN", GeoCoordinate{LonDeg: math.NaN()}, 0, 0},
		{"lon Inf", GeoCoordinate{LonDeg: math.Inf(1)}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			if math.Abs(got.LatDeg-tt.wantLat) > 1e-9 || math.Abs(got.LonDeg-tt.wantLon) > 1e-9 {
				t.Errorf("Clamp() = (%v, %v), want (%v, %v)", got.LatDeg, got.LonDeg, tt.wantLat, tt.wantLon)
			}
		})
	}
}

func TestObserverFrameBasis(t *testing.T) {
	f := ObserverFrameAt(GeoCoordinate{LatDeg: 39.9, LonDeg: 116.4}, 0.5, Vec3{}, 0.7, DegToRad(23.5), AxisY)
	m := f.Basis()

	if m.Col(0) != f.East || m.Col(1) != f.Up || m.Col(2) != f.South {
		t.Errorf("Basis columns = %v %v %v, want east, up, south", m.Col(0), m.Col(1), m.Col(2))
	}
	if f.North().Add(f.South).Len() > 1e-15 {
		t.Errorf("North() = %v is not opposite south %v", f.North(), f.South)
	}
}
