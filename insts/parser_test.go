package insts_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Parser", func() {
	var parser *insts.Parser

	BeforeEach(func() {
		parser = insts.NewParser()
	})

	It("should parse a load with an offset", func() {
		inst, err := parser.Parse("LD F6 34+ R2")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpLD))
		Expect(inst.Dest).To(Equal(emu.FP(6)))
		Expect(emu.Equal(inst.Src1, emu.Imm(34))).To(BeTrue())
		Expect(emu.Equal(inst.Src2, emu.UnitRef(emu.Reg(2)))).To(BeTrue())
		Expect(inst.Latency).To(Equal(uint64(2)))
	})

	It("should parse arithmetic", func() {
		inst, err := parser.Parse("MULTD F0 F2 F4")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpMULTD))
		Expect(inst.Dest).To(Equal(emu.FP(0)))
		Expect(emu.Equal(inst.Src1, emu.UnitRef(emu.FP(2)))).To(BeTrue())
		Expect(emu.Equal(inst.Src2, emu.UnitRef(emu.FP(4)))).To(BeTrue())
		Expect(inst.Latency).To(Equal(uint64(10)))
	})

	It("should tolerate surrounding whitespace", func() {
		inst, err := parser.Parse("\t  SD F6 0 R3  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpSD))
		Expect(inst.String()).To(Equal("SD F06 0 R3"))
	})

	It("should accept negative literals", func() {
		inst, err := parser.Parse("LD F2 -8 R1")
		Expect(err).NotTo(HaveOccurred())
		n, ok := inst.Src1.AsImm()
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(int64(-8)))
	})

	DescribeTable("should reject malformed lines",
		func(line, field string) {
			_, err := parser.Parse(line)
			Expect(err).To(HaveOccurred())

			var perr *insts.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Field).To(Equal(field))
			Expect(perr.Text).To(Equal(line))
		},
		Entry("unknown opcode", "ADD F0 F2 F4", "opcode"),
		Entry("lower case opcode", "addd F0 F2 F4", "opcode"),
		Entry("register destination", "ADDD R1 F2 F4", "dest"),
		Entry("odd destination", "ADDD F1 F2 F4", "dest"),
		Entry("bad first source", "ADDD F0 F3 F4", "src1"),
		Entry("bad literal", "LD F0 3x+ R2", "src1"),
		Entry("bad second source", "LD F0 0 Rx", "src2"),
		Entry("too few fields", "LD F0 0", "line"),
		Entry("too many fields", "LD F0 0 R1 R2", "line"),
		Entry("empty line", "", "line"),
	)

	It("should describe the failure in the message", func() {
		_, err := parser.Parse("FOO F0 F2 F4")
		Expect(err.Error()).To(ContainSubstring("opcode"))
		Expect(err.Error()).To(ContainSubstring("FOO"))
	})
})
