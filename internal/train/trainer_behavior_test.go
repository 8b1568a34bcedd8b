package train_test

import (
	"context"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pinnbar/internal/metrics"
	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/optim"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/pinn"
	"github.com/san-kum/pinnbar/internal/train"
)

var _ = Describe("Trainer", func() {
	var model *pinn.Model

	BeforeEach(func() {
		net, err := nn.New([]int{10, 10}, rand.New(rand.NewSource(11)))
		Expect(err).NotTo(HaveOccurred())

		bar := physics.NewBar()
		xs, err := physics.Collocation(bar.L, 25, physics.SamplingLinspace, nil)
		Expect(err).NotTo(HaveOccurred())

		model, err = pinn.NewModel(bar, physics.NewSinusoidal(), net, xs)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with L-BFGS", func() {
		It("reduces the loss and reports it through telemetry", func() {
			tel := metrics.NewTelemetry("lbfgs")
			tr := train.New(model, optim.NewLBFGS(20, 20), nil)
			tr.AddObserver(tel)
			tr.AddMetric(metrics.NewLossReduction())

			res, err := tr.Run(context.Background(), train.Config{Epochs: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.History).NotTo(BeEmpty())
			Expect(res.Final.Total).To(BeNumerically("<", res.History[0].Total))
			Expect(res.Metrics).To(HaveKeyWithValue("loss_reduction", BeNumerically(">", 0)))

			families, err := tel.Registry().Gather()
			Expect(err).NotTo(HaveOccurred())
			Expect(families).To(ContainElement(WithTransform(func(f interface{ GetName() string }) string {
				return f.GetName()
			}, Equal("pinnbar_epochs_total"))))
		})
	})

	Context("when training is resumed step by step", func() {
		It("keeps the history in epoch order", func() {
			tr := train.New(model, optim.NewAdam(1e-3), nil)
			cfg := train.DefaultConfig()

			for i := 0; i < 3; i++ {
				_, err := tr.Step(cfg)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(tr.Epoch()).To(Equal(3))
			Expect(tr.History()).To(HaveLen(3))

			tr.Reset()
			Expect(tr.Epoch()).To(BeZero())
			Expect(tr.History()).To(BeEmpty())
		})
	})

	Context("before training", func() {
		It("splits the total loss into PDE and boundary terms", func() {
			loss := model.CostFunction()
			Expect(loss.BC).To(BeNumerically(">=", 0))
			Expect(loss.Total).To(BeNumerically("~", loss.PDE+loss.BC, 1e-9*loss.Total))
		})
	})
})
