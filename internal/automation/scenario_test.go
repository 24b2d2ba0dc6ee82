package automation

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/experiment"
)

const scenarioYAML = `
name: warmup
description: a short pendulum then a simple orbit
runs:
  - name: chain
    preset: pendulum/short
    steps: 20
  - model: simple
    integrator: rk4
    steps: 10
`

var _ = Describe("Scenario", func() {
	It("overlays each run on its preset or the defaults", func() {
		sc, err := ParseScenario([]byte(scenarioYAML))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Name).To(Equal("warmup"))
		Expect(sc.Runs).To(HaveLen(2))

		chain := sc.Runs[0]
		Expect(chain.Name).To(Equal("chain"))
		Expect(chain.Config.Model).To(Equal("pendulum"))
		Expect(chain.Config.Integrator).To(Equal("euler"))
		Expect(chain.Config.Steps).To(Equal(20))

		orbit := sc.Runs[1]
		Expect(orbit.Name).To(Equal("simple-2"))
		Expect(orbit.Config.Integrator).To(Equal("rk4"))
		Expect(orbit.Config.Dt).To(Equal(0.01))
	})

	DescribeTable("rejects bad presets",
		func(preset string) {
			_, err := ParseScenario([]byte("runs:\n  - preset: " + preset + "\n"))
			Expect(err).To(HaveOccurred())
		},
		Entry("missing slash", "short"),
		Entry("unknown preset", "pendulum/huge"),
	)

	It("loads from disk and runs every entry", func() {
		path := filepath.Join(GinkgoT().TempDir(), "scenario.yaml")
		Expect(os.WriteFile(path, []byte(scenarioYAML), 0644)).To(Succeed())

		sc, err := LoadScenario(path)
		Expect(err).NotTo(HaveOccurred())

		results, err := RunScenario(context.Background(), experiment.NewRegistry(), sc, quietLogger())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Result.StepsTaken).To(Equal(20))
		Expect(results[1].Result.StepsTaken).To(Equal(10))
		Expect(results[1].Err).NotTo(HaveOccurred())
	})

	It("stops at a run that cannot be built", func() {
		sc, err := ParseScenario([]byte("runs:\n  - model: simple\n    steps: 5\n  - model: rope\n"))
		Expect(err).NotTo(HaveOccurred())

		results, err := RunScenario(context.Background(), experiment.NewRegistry(), sc, quietLogger())
		Expect(err).To(HaveOccurred())
		Expect(results).To(HaveLen(1))
	})
})
