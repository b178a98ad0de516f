package emit

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvbench/image"
	"github.com/sarchlab/rvbench/stream"
)

func sampleProject() *stream.Project {
	return &stream.Project{
		Top:     "downconverter",
		TopFile: "downconverter.sv",
		Clock:   "i_clock",
		Reset:   "i_reset",
		Targets: []stream.Descriptor{
			{Name: "i_inph", Valid: "i_valid", Ready: "t_0_ack", Width: 16, Length: 4},
			{Name: "i_delay", Valid: "i_delay_valid", Ready: "t_1_ack", Width: 12, Length: 128},
		},
		Initiators: []stream.Descriptor{
			{Name: "o_inph", Valid: "o_valid", Ready: "i_0_ack", Width: 16},
		},
	}
}

var _ = Describe("TemplateContext", func() {
	It("should describe every channel", func() {
		ctx, err := NewContext(sampleProject())

		Expect(err).NotTo(HaveOccurred())
		Expect(ctx.TopFile).To(Equal("downconverter.sv"))
		Expect(ctx.ResetHalfPeriods).To(Equal(40))
		Expect(ctx.Targets).To(HaveLen(2))
		Expect(ctx.Targets[0].CursorWidth).To(Equal(3))
		Expect(ctx.Targets[1].CursorWidth).To(Equal(8))
		Expect(ctx.Targets[0].Modulus).To(Equal(45))
		Expect(ctx.Targets[1].Modulus).To(Equal(47))
		Expect(ctx.Targets[1].Ticks).To(Equal(228))
		Expect(ctx.Initiators[0].Modulus).To(Equal(160))
		Expect(ctx.Initiators[0].File).To(Equal("o_inph.mif"))
	})

	It("should bind data, ready and valid before clock and reset", func() {
		ctx, err := NewContext(sampleProject())
		Expect(err).NotTo(HaveOccurred())

		Expect(ctx.Ports[0]).To(Equal(Binding{Port: "i_inph", Signal: "t0_data"}))
		Expect(ctx.Ports[1]).To(Equal(Binding{Port: "t_0_ack", Signal: "t0_ready"}))
		Expect(ctx.Ports[6]).To(Equal(Binding{Port: "o_inph", Signal: "i0_data"}))
		Expect(ctx.Ports).To(HaveLen(11))
		Expect(ctx.Ports[9]).To(Equal(Binding{Port: "i_clock", Signal: "i_clk"}))
		Expect(ctx.Ports[10]).To(Equal(Binding{Port: "i_reset", Signal: "i_rst_p"}))
	})

	It("should normalize the reset length", func() {
		ctx, err := NewContext(sampleProject())
		Expect(err).NotTo(HaveOccurred())

		Expect(ctx.WithResetCycles(3).ResetHalfPeriods).To(Equal(8))
		Expect(ctx.WithResetCycles(7).ResetHalfPeriods).To(Equal(16))
	})

	It("should reject a negative settle margin", func() {
		ctx, err := NewContext(sampleProject())
		Expect(err).NotTo(HaveOccurred())

		_, err = ctx.WithSettleMargin(-100)

		Expect(err).To(MatchError(ContainSubstring("negative settle margin -100")))
		Expect(ctx.Targets[0].Ticks).To(Equal(104))
	})

	It("should accept a zero settle margin", func() {
		ctx, err := NewContext(sampleProject())
		Expect(err).NotTo(HaveOccurred())

		ctx, err = ctx.WithSettleMargin(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(ctx.Targets[0].Ticks).To(Equal(4))
	})

	It("should reject a project that binds a DUT port twice", func() {
		p := sampleProject()
		p.Targets[1].Valid = "i_valid"

		_, err := NewContext(p)

		Expect(err).To(MatchError(stream.ErrInvalidDescriptor))
	})

	It("should reject an invalid project", func() {
		p := sampleProject()
		p.Targets[0].Length = 0

		_, err := NewContext(p)

		Expect(err).To(MatchError(stream.ErrInvalidDescriptor))
	})
})

var _ = Describe("Render", func() {
	var files map[string][]byte

	BeforeEach(func() {
		ctx, err := NewContext(sampleProject())
		Expect(err).NotTo(HaveOccurred())

		ctx, err = ctx.WithSettleMargin(10)
		Expect(err).NotTo(HaveOccurred())

		files, err = Render(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should render every file", func() {
		Expect(files).To(HaveLen(len(FileNames)))
		for _, name := range FileNames {
			Expect(files).To(HaveKey(name))
		}
	})

	It("should verilate the top file", func() {
		Expect(string(files["Makefile"])).To(ContainSubstring("\tdownconverter.sv \\\n"))
	})

	It("should run every target for its length plus the margin", func() {
		tb := string(files["tb.cpp"])

		Expect(tb).To(ContainSubstring("t->reset(40);"))
		Expect(tb).To(ContainSubstring("t->tick(14);"))
		Expect(tb).To(ContainSubstring("t->tick(138);"))
	})

	It("should load images and capture outputs", func() {
		sv := string(files["top_tb.sv"])

		Expect(sv).To(ContainSubstring(`$readmemh("i_inph.mif", mem0);`))
		Expect(sv).To(ContainSubstring(`$readmemh("i_delay.mif", mem1);`))
		Expect(sv).To(ContainSubstring(`f0 = $fopen("o_inph.mif", "w");`))
		Expect(sv).To(ContainSubstring("counter % 32'd45"))
		Expect(sv).To(ContainSubstring("counter % 32'd47"))
		Expect(sv).To(ContainSubstring("counter % 32'd160"))
		Expect(sv).To(ContainSubstring("cursor0 == 3'd4"))
	})

	It("should connect the DUT ports", func() {
		sv := string(files["top_tb.sv"])

		Expect(sv).To(ContainSubstring("downconverter DUT ("))
		Expect(sv).To(ContainSubstring(" .i_inph (t0_data)"))
		Expect(sv).To(ContainSubstring(",.o_valid (i0_valid)"))
		Expect(sv).To(ContainSubstring(",.i_reset (i_rst_p)"))
	})

	It("should list waves per channel", func() {
		tcl := string(files["waves.tcl"])

		Expect(tcl).To(ContainSubstring(`lappend t1 "top_tb.t1_valid"`))
		Expect(tcl).To(ContainSubstring(`lappend i0 "top_tb.i0_ready"`))
	})
})

var _ = Describe("WriteAll", func() {
	It("should write rendered files", func() {
		dir := filepath.Join(GinkgoT().TempDir(), "out")
		files := map[string][]byte{"Makefile": []byte("all:\n")}

		Expect(WriteAll(dir, files)).To(Succeed())

		content, err := os.ReadFile(filepath.Join(dir, "Makefile"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("all:\n"))
	})

	It("should report the failing path", func() {
		blocker := filepath.Join(GinkgoT().TempDir(), "file")
		Expect(os.WriteFile(blocker, nil, 0644)).To(Succeed())

		err := WriteAll(blocker, map[string][]byte{"Makefile": nil})

		Expect(err).To(MatchError(image.ErrIO))
		var ioErr *image.IOError
		Expect(err).To(BeAssignableToTypeOf(ioErr))
	})
})
