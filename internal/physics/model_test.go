package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

func mustModel(t *testing.T, kind Kind, size int) *Model {
	t.Helper()
	m, err := New(kind, size, DefaultParams(kind))
	if err != nil {
		t.Fatalf("New(%s, %d): %v", kind, size, err)
	}
	return m
}

// scrambled returns a correctly sized state far from the model's own, with no
// two particles sharing a position.
func scrambled(n int) dynamo.State {
	x := dynamo.NewState(n)
	for i := 0; i < n; i++ {
		f := float64(i)
		x[2*i] = dynamo.Vec3{X: f*1.3 + 0.2, Y: -f*0.7 + 0.5, Z: math.Sin(f)}
		x[2*i+1] = dynamo.Vec3{X: 0.4 - f*0.1, Y: f * 0.25, Z: -0.3}
	}
	return x
}

func TestStateShape(t *testing.T) {
	tests := []struct {
		kind      Kind
		size      int
		particles int
	}{
		{KindSimple, 0, 1},
		{KindPendulum, 1, 1},
		{KindPendulum, 5, 5},
		{KindCloth, 1, 1},
		{KindCloth, 4, 16},
	}

	for _, tt := range tests {
		m := mustModel(t, tt.kind, tt.size)
		if m.NumParticles() != tt.particles {
			t.Errorf("%s(%d): expected %d particles, got %d", tt.kind, tt.size, tt.particles, m.NumParticles())
		}
		if got := len(m.State()); got != 2*tt.particles {
			t.Errorf("%s(%d): expected state length %d, got %d", tt.kind, tt.size, 2*tt.particles, got)
		}
		dx, err := m.EvalF(m.State())
		if err != nil {
			t.Fatalf("%s(%d): EvalF: %v", tt.kind, tt.size, err)
		}
		if len(dx) != 2*tt.particles {
			t.Errorf("%s(%d): derivative length %d", tt.kind, tt.size, len(dx))
		}
	}
}

func TestSetState_InvalidSize(t *testing.T) {
	m := mustModel(t, KindPendulum, 3)
	before := m.State()

	err := m.SetState(dynamo.NewState(2))
	if !errors.Is(err, dynamo.ErrInvalidStateSize) {
		t.Fatalf("expected ErrInvalidStateSize, got %v", err)
	}

	after := m.State()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("state changed after rejected SetState at %d: %v -> %v", i, before[i], after[i])
		}
	}

	if _, err := m.EvalF(dynamo.NewState(4)); !errors.Is(err, dynamo.ErrInvalidStateSize) {
		t.Errorf("EvalF: expected ErrInvalidStateSize, got %v", err)
	}
}

func TestSetState_Copies(t *testing.T) {
	m := mustModel(t, KindPendulum, 2)
	x := m.State()
	x[2] = dynamo.Vec3{X: 9}
	if err := m.SetState(x); err != nil {
		t.Fatal(err)
	}

	x[2] = dynamo.Vec3{X: -9}
	if p, _ := m.Position(1); p.X != 9 {
		t.Errorf("model aliased the caller's slice: position %v", p)
	}

	got := m.State()
	got[2] = dynamo.Vec3{}
	if p, _ := m.Position(1); p.X != 9 {
		t.Errorf("State() exposed internal storage: position %v", p)
	}
}

func TestPendulum_PinnedParticle(t *testing.T) {
	m := mustModel(t, KindPendulum, 4)

	for _, x := range []dynamo.State{m.State(), scrambled(4)} {
		dx, err := m.EvalF(x)
		if err != nil {
			t.Fatal(err)
		}
		if dx[0] != (dynamo.Vec3{}) || dx[1] != (dynamo.Vec3{}) {
			t.Errorf("pinned particle has derivative %v, %v", dx[0], dx[1])
		}
		if dx[2] != x[3] {
			t.Errorf("position derivative should equal velocity: %v vs %v", dx[2], x[3])
		}
	}
}

func TestPendulum_Topology(t *testing.T) {
	tests := []struct {
		n       int
		springs int
	}{
		{1, 0},
		{2, 1},
		{3, 3},
		{6, 9},
	}

	for _, tt := range tests {
		m := mustModel(t, KindPendulum, tt.n)
		if m.NumSprings() != tt.springs {
			t.Errorf("n=%d: expected %d springs, got %d", tt.n, tt.springs, m.NumSprings())
		}
		for _, s := range m.Springs() {
			gap := s.B - s.A
			if (s.Kind == Structural && gap != 1) || (s.Kind == Flex && gap != 2) {
				t.Errorf("n=%d: unexpected %s spring %d-%d", tt.n, s.Kind, s.A, s.B)
			}
		}
	}
}

func TestPendulum_InitialLayout(t *testing.T) {
	m := mustModel(t, KindPendulum, 3)
	want := []dynamo.Vec3{{Y: 1}, {X: 1, Y: 1, Z: 2}, {X: 2, Y: 1, Z: 3}}

	for i, p := range m.Positions() {
		if p != want[i] {
			t.Errorf("particle %d at %v, want %v", i, p, want[i])
		}
		if v, _ := m.Velocity(i); v != (dynamo.Vec3{}) {
			t.Errorf("particle %d should start at rest, got %v", i, v)
		}
	}
}

func TestPendulum_GravityAtRest(t *testing.T) {
	p := DefaultPendulumParams()
	m, err := NewPendulum(3, p)
	if err != nil {
		t.Fatal(err)
	}

	dx, err := m.EvalF(m.State())
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < 3; i++ {
		if math.Abs(dx[2*i+1].Y+p.Gravity) > 1e-12 {
			t.Errorf("particle %d: expected y acceleration %f, got %f", i, -p.Gravity, dx[2*i+1].Y)
		}
	}
}

func TestNew_InvalidParams(t *testing.T) {
	bad := DefaultPendulumParams()
	bad.Mass = 0

	tests := []struct {
		name string
		fn   func() (*Model, error)
	}{
		{"empty pendulum", func() (*Model, error) { return NewPendulum(0, DefaultPendulumParams()) }},
		{"empty cloth", func() (*Model, error) { return NewCloth(0, DefaultClothParams()) }},
		{"zero mass", func() (*Model, error) { return NewPendulum(3, bad) }},
		{"negative drag", func() (*Model, error) {
			p := DefaultClothParams()
			p.Drag = -1
			return NewCloth(3, p)
		}},
		{"zero shear", func() (*Model, error) {
			p := DefaultClothParams()
			p.Shear = 0
			return NewCloth(3, p)
		}},
		{"negative flex rest", func() (*Model, error) {
			p := DefaultClothParams()
			p.FlexRest = -1
			return NewCloth(3, p)
		}},
		{"infinite shear rest", func() (*Model, error) {
			p := DefaultClothParams()
			p.ShearRest = math.Inf(1)
			return NewCloth(3, p)
		}},
		{"nan gravity", func() (*Model, error) {
			p := DefaultPendulumParams()
			p.Gravity = math.NaN()
			return NewPendulum(3, p)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestEvalF_PureAndDeterministic(t *testing.T) {
	for _, kind := range []Kind{KindSimple, KindPendulum, KindCloth} {
		m := mustModel(t, kind, 3)
		before := m.State()
		x := scrambled(m.NumParticles())

		d1, err := m.EvalF(x)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		d2, err := m.EvalF(x)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}

		for i := range d1 {
			if d1[i] != d2[i] {
				t.Errorf("%s: EvalF not deterministic at %d: %v vs %v", kind, i, d1[i], d2[i])
			}
		}
		after := m.State()
		for i := range before {
			if before[i] != after[i] {
				t.Errorf("%s: EvalF mutated model state at %d", kind, i)
			}
		}
	}
}

func TestEvalF_Degenerate(t *testing.T) {
	m := mustModel(t, KindPendulum, 2)
	x := m.State()
	x[2] = x[0]

	if _, err := m.EvalF(x); !errors.Is(err, dynamo.ErrDegenerateSpring) {
		t.Errorf("expected ErrDegenerateSpring, got %v", err)
	}
}

func TestSimple_RotationalField(t *testing.T) {
	m := NewSimple()
	x := dynamo.State{{X: 1, Y: 2, Z: 3}, {X: 7, Y: 7, Z: 7}}

	dx, err := m.EvalF(x)
	if err != nil {
		t.Fatal(err)
	}
	if dx[0] != (dynamo.Vec3{X: -2, Y: 1}) {
		t.Errorf("expected (-2,1,0), got %v", dx[0])
	}
	if dx[1] != (dynamo.Vec3{X: -1, Y: -2}) {
		t.Errorf("expected (-1,-2,0), got %v", dx[1])
	}

	if e := m.Energy(m.State()); math.Abs(e-0.5) > 1e-12 {
		t.Errorf("expected energy 0.5, got %f", e)
	}
}

func TestEnergy_WrongSize(t *testing.T) {
	m := mustModel(t, KindCloth, 2)
	if e := m.Energy(dynamo.NewState(1)); !math.IsNaN(e) {
		t.Errorf("expected NaN, got %f", e)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindSimple, KindPendulum, KindCloth} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("rope"); !errors.Is(err, dynamo.ErrUnknownModel) {
		t.Errorf("expected ErrUnknownModel, got %v", err)
	}
}

func TestParams_SetParam(t *testing.T) {
	p := DefaultClothParams()
	if err := p.SetParam("gravity", 9.81); err != nil {
		t.Fatal(err)
	}
	if p.GetParams()["gravity"] != 9.81 {
		t.Errorf("expected gravity 9.81, got %f", p.Gravity)
	}
	if err := p.SetParam("viscosity", 1); err == nil {
		t.Error("expected error for unknown param")
	}

	for name, v := range map[string]float64{"rest_length": 0.8, "shear_rest": 1.3, "flex_rest": 1.9} {
		if err := p.SetParam(name, v); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := p.GetParams()[name]; got != v {
			t.Errorf("%s: expected %g, got %g", name, v, got)
		}
	}
}

func TestPerturb_SimpleKeepsFieldVelocity(t *testing.T) {
	m := NewSimple()
	if err := Perturb(m, 0.3, 5); err != nil {
		t.Fatal(err)
	}
	x := m.State()
	if x[0] == (dynamo.Vec3{X: 1}) {
		t.Fatal("jitter did not move the particle")
	}
	want := dynamo.Vec3{X: -x[0].Y, Y: x[0].X}
	if x[1] != want {
		t.Errorf("velocity slot %v does not match the field %v at %v", x[1], want, x[0])
	}
}

func TestPerturb(t *testing.T) {
	a := mustModel(t, KindCloth, 4)
	b := mustModel(t, KindCloth, 4)
	orig := a.State()

	if err := Perturb(a, 0.2, 7); err != nil {
		t.Fatal(err)
	}
	if err := Perturb(b, 0.2, 7); err != nil {
		t.Fatal(err)
	}

	moved := 0
	xa, xb := a.State(), b.State()
	for i := 0; i < a.NumParticles(); i++ {
		if xa[2*i] != xb[2*i] {
			t.Errorf("particle %d: same seed gave %v and %v", i, xa[2*i], xb[2*i])
		}
		if a.Pinned(i) && xa[2*i] != orig[2*i] {
			t.Errorf("pinned particle %d moved to %v", i, xa[2*i])
		}
		if xa[2*i] != orig[2*i] {
			moved++
		}
		if d := r3.Sub(xa[2*i], orig[2*i]); math.Abs(d.X) > 0.2 || math.Abs(d.Y) > 0.2 || math.Abs(d.Z) > 0.2 {
			t.Errorf("particle %d offset %v exceeds amplitude", i, d)
		}
	}
	if moved == 0 {
		t.Error("no particle was perturbed")
	}

	if err := Perturb(a, -1, 7); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
