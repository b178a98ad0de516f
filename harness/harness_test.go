package harness

import (
	"bytes"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/rvbench/hooking"
	"github.com/sarchlab/rvbench/image"
	"github.com/sarchlab/rvbench/stream"
)

type recordingHook struct {
	cycles    []CycleRecord
	transfers []Transfer
}

func (r *recordingHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosCycle:
		r.cycles = append(r.cycles, ctx.Item.(CycleRecord))
	case HookPosAccept:
		r.transfers = append(r.transfers, ctx.Item.(Transfer))
	}
}

func (r *recordingHook) initiatorCycles() []int {
	var cycles []int
	for _, t := range r.transfers {
		if t.Direction == stream.Initiator {
			cycles = append(cycles, t.Cycle)
		}
	}

	return cycles
}

func channel(name string, width, length int) stream.Descriptor {
	return stream.Descriptor{
		Name:   name,
		Valid:  name + "_valid",
		Ready:  name + "_ready",
		Width:  width,
		Length: length,
	}
}

func singleStreamProject() *stream.Project {
	return &stream.Project{
		Top:        "dut",
		Clock:      "clk",
		Reset:      "rst",
		Targets:    []stream.Descriptor{channel("a", 16, 4)},
		Initiators: []stream.Descriptor{channel("b", 16, 0)},
	}
}

func identityImages() map[string]image.Image {
	return map[string]image.Image{
		"a": {Width: 16, Words: []uint64{0, 1, 2, 3}},
	}
}

var _ = Describe("Harness", func() {
	var (
		project *stream.Project
		hook    *recordingHook
	)

	BeforeEach(func() {
		project = singleStreamProject()
		hook = &recordingHook{}
	})

	It("should pass an identity image through in four accepted cycles", func() {
		h, err := MakeBuilder().
			WithResetCycles(4).
			WithImages(identityImages()).
			Build("Harness", project)
		Expect(err).NotTo(HaveOccurred())
		h.AcceptHook(hook)

		Expect(h.Run()).To(Succeed())

		Expect(h.Sinks()[0].Words()).To(Equal([]uint64{0, 1, 2, 3}))
		Expect(hook.initiatorCycles()).To(Equal([]int{5, 6, 7, 9}))
		Expect(h.Budget()).To(Equal(4 + 4 + DefaultSettleMargin))
		Expect(h.Cycle()).To(Equal(h.Budget()))
		Expect(hook.cycles).To(HaveLen(h.Budget()))
		Expect(hook.cycles[3].Reset).To(BeTrue())
		Expect(hook.cycles[4].Reset).To(BeFalse())
	})

	It("should stall targets exactly where the counter is not a multiple of 45", func() {
		h, err := MakeBuilder().
			WithResetCycles(4).
			WithSeed(0).
			WithStallInjection(true, false).
			WithSettleMargin(5000).
			WithImages(identityImages()).
			Build("Harness", project)
		Expect(err).NotTo(HaveOccurred())
		h.AcceptHook(hook)

		Expect(h.Run()).To(Succeed())

		lfsr := uint32(0b100000)
		expected := uint32(0)
		for _, rec := range hook.cycles {
			if rec.Reset {
				Expect(rec.Counter).To(BeZero())
				continue
			}

			Expect(rec.Counter).To(Equal(expected), "cycle %d", rec.Cycle)
			Expect(rec.TargetStalled[0]).To(Equal(rec.Counter%45 != 0))
			Expect(rec.InitiatorStalled[0]).To(BeFalse())

			expected += 1 + lfsr
			b0, b5 := lfsr&1, lfsr>>5&1
			lfsr = (lfsr<<1)&0x3c | b5 | (b0^b5)<<1
		}
		Expect(h.Sinks()[0].Words()).To(Equal([]uint64{0, 1, 2, 3}))
	})

	It("should reproduce schedules and records with the same seed", func() {
		project.Targets = append(project.Targets, channel("c", 12, 30))
		project.Initiators = append(project.Initiators, channel("d", 8, 0))
		gen := image.NewGenerator().WithSeed(9)
		images := map[string]image.Image{}
		for _, t := range project.Targets {
			img, err := gen.Generate(t)
			Expect(err).NotTo(HaveOccurred())
			images[t.Name] = img
		}

		run := func() (*Harness, *recordingHook) {
			rec := &recordingHook{}
			h, err := MakeBuilder().
				WithSeed(77).
				WithStallInjection(true, true).
				WithSettleMargin(1000).
				WithImages(images).
				Build("Harness", project)
			Expect(err).NotTo(HaveOccurred())
			h.AcceptHook(rec)
			Expect(h.Run()).To(Succeed())

			return h, rec
		}

		h1, rec1 := run()
		h2, rec2 := run()

		Expect(rec2.cycles).To(Equal(rec1.cycles))
		Expect(h2.Sinks()[0].Words()).To(Equal(h1.Sinks()[0].Words()))
		Expect(h2.Sinks()[1].Words()).To(Equal(h1.Sinks()[1].Words()))
	})

	It("should deliver every word through a queue under ready stalls", func() {
		h, err := MakeBuilder().
			WithResetCycles(4).
			WithDevice(NewQueue(1, []int{16}, 2)).
			WithStallInjection(false, true).
			WithoutStallPattern().
			WithSettleMargin(1000).
			WithImages(identityImages()).
			Build("Harness", project)
		Expect(err).NotTo(HaveOccurred())

		Expect(h.Run()).To(Succeed())

		Expect(h.Sinks()[0].Words()).To(Equal([]uint64{0, 1, 2, 3}))
	})

	It("should drive the device in a fixed order", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		device := NewMockDevice(mockCtrl)
		project.Targets[0].Length = 1

		h, err := MakeBuilder().
			WithResetCycles(4).
			WithSettleMargin(0).
			WithDevice(device).
			WithImages(map[string]image.Image{
				"a": {Width: 16, Words: []uint64{5}},
			}).
			Build("Harness", project)
		Expect(err).NotTo(HaveOccurred())

		gomock.InOrder(
			device.EXPECT().Reset().Times(4),
			device.EXPECT().EvalReady(gomock.Any(), gomock.Any()).
				Do(func(_, targetReady []bool) { targetReady[0] = true }),
			device.EXPECT().EvalOutput(gomock.Any(), gomock.Any()),
			device.EXPECT().Commit(gomock.Any(), gomock.Any()),
		)

		Expect(h.Run()).To(Succeed())
		Expect(h.Budget()).To(Equal(5))
	})

	It("should write captures next to the images", func() {
		h, err := MakeBuilder().
			WithResetCycles(4).
			WithImages(identityImages()).
			Build("Harness", project)
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Run()).To(Succeed())
		dir := GinkgoT().TempDir()

		Expect(h.WriteCaptures(dir)).To(Succeed())

		img, err := image.ReadFile(dir+"/b.mif", 16)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Words).To(Equal([]uint64{0, 1, 2, 3}))
	})

	It("should log accepted words", func() {
		buf := new(bytes.Buffer)
		h, err := MakeBuilder().
			WithResetCycles(4).
			WithImages(identityImages()).
			Build("Harness", project)
		Expect(err).NotTo(HaveOccurred())
		h.AcceptHook(NewLogHook(log.New(buf, "", 0)))

		Expect(h.Run()).To(Succeed())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(HaveLen(8))
		Expect(lines[0]).To(Equal("cycle 5 target a[0] 0000"))
		Expect(lines[1]).To(Equal("cycle 5 initiator b[0] 0000"))
		Expect(lines[7]).To(Equal("cycle 9 initiator b[0] 0003"))
	})

	Context("when building", func() {
		It("should round reset cycles up to an even number of at least 4", func() {
			Expect(NormalizeResetCycles(0)).To(Equal(4))
			Expect(NormalizeResetCycles(3)).To(Equal(4))
			Expect(NormalizeResetCycles(5)).To(Equal(6))
			Expect(NormalizeResetCycles(20)).To(Equal(20))
		})

		It("should default to 20 reset cycles", func() {
			h, err := MakeBuilder().
				WithImages(identityImages()).
				Build("Harness", project)

			Expect(err).NotTo(HaveOccurred())
			Expect(h.ResetCycles()).To(Equal(DefaultResetCycles))
			Expect(h.Name()).To(Equal("Harness"))
		})

		It("should reject a missing image", func() {
			_, err := MakeBuilder().Build("Harness", project)

			Expect(err).To(MatchError(ContainSubstring("no image")))
		})

		It("should reject an image of the wrong length", func() {
			_, err := MakeBuilder().
				WithImages(map[string]image.Image{
					"a": {Width: 16, Words: []uint64{1}},
				}).
				Build("Harness", project)

			Expect(err).To(MatchError(ContainSubstring("has 1 words")))
		})

		It("should reject an image of the wrong width", func() {
			_, err := MakeBuilder().
				WithImages(map[string]image.Image{
					"a": {Width: 8, Words: []uint64{0, 1, 2, 3}},
				}).
				Build("Harness", project)

			Expect(err).To(MatchError(ContainSubstring("bits wide")))
		})

		It("should reject an invalid project", func() {
			project.Targets[0].Width = 0

			_, err := MakeBuilder().
				WithImages(identityImages()).
				Build("Harness", project)

			Expect(err).To(MatchError(stream.ErrInvalidDescriptor))
		})
	})
})

var _ = DescribeTable("SelectFunction",
	func(n int, valid, ready, fails bool) {
		v, r, err := SelectFunction(n)

		if fails {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(valid))
		Expect(r).To(Equal(ready))
	},
	Entry("none", 0, false, false, false),
	Entry("valid", 1, true, false, false),
	Entry("ready", 2, false, true, false),
	Entry("both", 3, true, true, false),
	Entry("out of range", 4, false, false, true),
	Entry("negative", -1, false, false, true),
)
