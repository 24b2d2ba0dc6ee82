package automation

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
)

var _ = Describe("Sweep", func() {
	var reg *experiment.Registry

	BeforeEach(func() {
		reg = experiment.NewRegistry()
	})

	Describe("Values", func() {
		It("spans the range evenly", func() {
			s := &Sweep{Min: 1, Max: 2, Points: 3}
			vals, err := s.Values()
			Expect(err).NotTo(HaveOccurred())
			Expect(vals).To(Equal([]float64{1, 1.5, 2}))
		})

		DescribeTable("rejects bad ranges",
			func(s *Sweep) {
				_, err := s.Values()
				Expect(err).To(MatchError(dynamo.ErrParameterBounds))
			},
			Entry("single point", &Sweep{Min: 0, Max: 1, Points: 1}),
			Entry("reversed", &Sweep{Min: 2, Max: 1, Points: 3}),
		)
	})

	It("leaves the base config untouched", func() {
		base := config.GetPreset("pendulum", "short")
		s := &Sweep{Base: base, Param: "gravity", Min: 1, Max: 2, Points: 2}
		cfg := s.configAt(1.5)
		Expect(cfg.Physics).To(HaveKeyWithValue("gravity", 1.5))
		Expect(base.Physics).To(BeNil())
	})

	It("grows euler drift with the time step", func() {
		base := config.GetPreset("simple", "orbit")
		base.Steps = 100
		s := &Sweep{Base: base, Param: ParamDt, Min: 0.01, Max: 0.05, Points: 3}

		points, err := RunSweep(context.Background(), reg, s, quietLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(3))
		for _, p := range points {
			Expect(p.Failed()).To(BeFalse())
			Expect(p.Steps).To(Equal(100))
		}
		Expect(points[0].Drift).To(BeNumerically("<", points[1].Drift))
		Expect(points[1].Drift).To(BeNumerically("<", points[2].Drift))
	})

	It("runs a physics sweep on a pendulum", func() {
		base := config.GetPreset("pendulum", "short")
		base.Steps = 50
		s := &Sweep{Base: base, Param: "gravity", Min: 5, Max: 10, Points: 2}

		points, err := RunSweep(context.Background(), reg, s, quietLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(2))
		Expect(points[0].Value).To(Equal(5.0))
		Expect(points[1].Value).To(Equal(10.0))
		Expect(points[1].Stability).To(Equal(1.0))
	})

	It("fails before running on an unknown parameter", func() {
		base := config.GetPreset("pendulum", "short")
		s := &Sweep{Base: base, Param: "viscosity", Min: 0, Max: 1, Points: 2}
		_, err := RunSweep(context.Background(), reg, s, quietLogger())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("MonteCarlo", func() {
	It("runs one trial per seed", func() {
		base := config.GetPreset("cloth", "small")
		base.Steps = 50
		base.Seed = 11
		base.Jitter = 0.05
		mc := &MonteCarlo{Base: base, Trials: 3}

		summary, err := RunMonteCarlo(context.Background(), experiment.NewRegistry(), mc, quietLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Trials).To(HaveLen(3))
		for i, tr := range summary.Trials {
			Expect(tr.Seed).To(Equal(int64(11 + i)))
			Expect(tr.Err).NotTo(HaveOccurred())
		}
		Expect(summary.Stable).To(Equal(3))
		Expect(summary.StableFraction()).To(Equal(1.0))
		Expect(summary.MaxDrift).To(BeNumerically(">=", summary.MeanDrift))
	})

	It("rejects zero trials", func() {
		mc := &MonteCarlo{Base: config.DefaultConfig(), Trials: 0}
		_, err := RunMonteCarlo(context.Background(), experiment.NewRegistry(), mc, quietLogger())
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})
})
