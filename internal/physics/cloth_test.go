package physics

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/springsim/internal/dynamo"
)

var _ = Describe("Cloth", func() {
	var cloth *Model

	BeforeEach(func() {
		var err error
		cloth, err = NewCloth(3, DefaultClothParams())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("topology", func() {
		It("creates 26 springs for a 3x3 grid", func() {
			Expect(cloth.NumSprings()).To(Equal(26))
		})

		It("splits the 3x3 springs into 12 structural, 8 shear and 6 flex", func() {
			counts := map[SpringKind]int{}
			for _, s := range cloth.Springs() {
				counts[s.Kind]++
			}
			Expect(counts).To(Equal(map[SpringKind]int{Structural: 12, Shear: 8, Flex: 6}))
		})

		DescribeTable("matches the closed-form count",
			func(side, want int) {
				m, err := NewCloth(side, DefaultClothParams())
				Expect(err).NotTo(HaveOccurred())
				Expect(m.NumSprings()).To(Equal(want))
				Expect(ClothSpringCount(side)).To(Equal(want))
			},
			Entry("1x1", 1, 0),
			Entry("2x2", 2, 6),
			Entry("3x3", 3, 26),
			Entry("4x4", 4, 58),
			Entry("10x10", 10, 2*10*9+2*9*9+2*10*8),
		)

		It("never repeats a particle pair", func() {
			m, err := NewCloth(6, DefaultClothParams())
			Expect(err).NotTo(HaveOccurred())

			seen := map[[2]int]bool{}
			for _, s := range m.Springs() {
				key := [2]int{min(s.A, s.B), max(s.A, s.B)}
				Expect(seen).NotTo(HaveKey(key))
				seen[key] = true
			}
		})

		It("links every spring from the later particle", func() {
			for _, s := range cloth.Springs() {
				Expect(s.A).To(BeNumerically(">", s.B))
			}
		})

		It("starts with shear and flex springs stretched to the grid spacing", func() {
			want := map[SpringKind]float64{
				Structural: 0,
				Shear:      0.3 * (math.Sqrt2 - 1),
				Flex:       0.3,
			}
			forces, err := cloth.SpringForces()
			Expect(err).NotTo(HaveOccurred())
			for i, s := range cloth.Springs() {
				Expect(s.RestLength).To(Equal(1.0))
				Expect(forces[i]).To(BeNumerically("~", want[s.Kind], 1e-12), "spring %d (%v)", i, s.Kind)
			}
		})

		It("starts unloaded with relaxed rest lengths", func() {
			relaxed, err := NewCloth(3, RelaxedClothParams())
			Expect(err).NotTo(HaveOccurred())
			forces, err := relaxed.SpringForces()
			Expect(err).NotTo(HaveOccurred())
			for _, f := range forces {
				Expect(f).To(BeNumerically("~", 0, 1e-12))
			}
		})

		It("takes rest lengths per spring class from the params", func() {
			p := DefaultClothParams()
			p.RestLength, p.ShearRest, p.FlexRest = 0.9, 1.2, 1.8
			m, err := NewCloth(3, p)
			Expect(err).NotTo(HaveOccurred())
			want := map[SpringKind]float64{Structural: 0.9, Shear: 1.2, Flex: 1.8}
			for _, s := range m.Springs() {
				Expect(s.RestLength).To(Equal(want[s.Kind]))
			}
		})
	})

	Describe("layout", func() {
		It("places particle row*n+col at (col,row,0)", func() {
			p, err := cloth.Position(1*3 + 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(dynamo.Vec3{X: 2, Y: 1}))
		})

		It("pins exactly the top row", func() {
			for i := 0; i < cloth.NumParticles(); i++ {
				Expect(cloth.Pinned(i)).To(Equal(i >= 6), "particle %d", i)
			}
		})

		It("rejects out-of-range accessors", func() {
			_, err := cloth.Position(9)
			Expect(err).To(MatchError(dynamo.ErrIndexOutOfRange))
		})
	})

	Describe("EvalF", func() {
		It("zeroes both derivative slots of the pinned row for any state", func() {
			x := scrambled(cloth.NumParticles())
			dx, err := cloth.EvalF(x)
			Expect(err).NotTo(HaveOccurred())
			for i := 6; i < 9; i++ {
				Expect(dx[2*i]).To(Equal(dynamo.Vec3{}))
				Expect(dx[2*i+1]).To(Equal(dynamo.Vec3{}))
			}
		})

		It("only feels gravity while flat, relaxed and at rest", func() {
			relaxed, err := NewCloth(3, RelaxedClothParams())
			Expect(err).NotTo(HaveOccurred())
			dx, err := relaxed.EvalF(relaxed.State())
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 6; i++ {
				Expect(dx[2*i]).To(Equal(dynamo.Vec3{}))
				Expect(dx[2*i+1].X).To(BeNumerically("~", 0, 1e-12))
				Expect(dx[2*i+1].Y).To(BeNumerically("~", -DefaultGravity, 1e-12))
				Expect(dx[2*i+1].Z).To(BeNumerically("~", 0, 1e-12))
			}
		})

		It("pulls the free bottom corner up and inward under the default pre-tension", func() {
			dx, err := cloth.EvalF(cloth.State())
			Expect(err).NotTo(HaveOccurred())
			shear := 0.3 * (math.Sqrt2 - 1) / math.Sqrt2
			Expect(dx[1].X).To(BeNumerically("~", 0.3+shear, 1e-12))
			Expect(dx[1].Y).To(BeNumerically("~", shear, 1e-12))
			Expect(dx[1].Z).To(BeNumerically("~", 0, 1e-12))
		})

		It("opposes velocity with drag", func() {
			x := cloth.State()
			x[1] = dynamo.Vec3{X: 2}
			dx, err := cloth.EvalF(x)
			Expect(err).NotTo(HaveOccurred())
			Expect(dx[0]).To(Equal(dynamo.Vec3{X: 2}))
			Expect(dx[1].X).To(BeNumerically("~", -DefaultDrag*2, 1e-12))
		})

		It("reports coincident particles instead of returning NaN", func() {
			x := cloth.State()
			x[2] = x[0]
			_, err := cloth.EvalF(x)
			Expect(err).To(MatchError(dynamo.ErrDegenerateSpring))
		})
	})

	Describe("Energy", func() {
		It("adds the pre-tension to the gravitational potential at rest", func() {
			gravity := 0.0
			for _, p := range cloth.Positions() {
				gravity += DefaultMass * DefaultGravity * p.Y
			}
			shear := 0.5 * 0.3 * (math.Sqrt2 - 1) * (math.Sqrt2 - 1)
			flex := 0.5 * 0.3
			Expect(cloth.Energy(cloth.State())).To(BeNumerically("~", gravity+8*shear+6*flex, 1e-12))
			Expect(math.IsNaN(cloth.Energy(nil))).To(BeTrue())
		})

		It("is pure gravitational potential when relaxed", func() {
			relaxed, err := NewCloth(3, RelaxedClothParams())
			Expect(err).NotTo(HaveOccurred())
			want := 0.0
			for _, p := range relaxed.Positions() {
				want += DefaultMass * DefaultGravity * p.Y
			}
			Expect(relaxed.Energy(relaxed.State())).To(BeNumerically("~", want, 1e-12))
		})
	})
})
