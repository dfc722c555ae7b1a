package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Instruction lifecycle", func() {
	var parser *insts.Parser

	BeforeEach(func() {
		parser = insts.NewParser()
	})

	mustParse := func(line string) *insts.Instruction {
		inst, err := parser.Parse(line)
		Expect(err).NotTo(HaveOccurred())
		return inst
	}

	// calculate advances the instruction from cycle start until it reports
	// completion and returns the cycle of that report.
	calculate := func(inst *insts.Instruction, start uint64) uint64 {
		cycle := start
		for !inst.Advance(cycle) {
			cycle++
			Expect(cycle).To(BeNumerically("<", start+100))
		}
		return cycle
	}

	It("should not advance before emit", func() {
		inst := mustParse("ADDD F0 F2 F4")
		Expect(inst.Advance(1)).To(BeFalse())
		Expect(inst.StartCycle).To(BeZero())
	})

	It("should stamp emit and arm the countdown", func() {
		inst := mustParse("MULTD F0 F2 F4")
		inst.Emit(3)
		Expect(inst.EmitCycle).To(Equal(uint64(3)))
		Expect(inst.Remaining()).To(Equal(uint64(10)))
	})

	It("should finish a load after two calculating cycles", func() {
		inst := mustParse("LD F6 34+ R2")
		inst.Emit(1)

		Expect(inst.Advance(1)).To(BeFalse())
		Expect(inst.StartCycle).To(Equal(uint64(1)))
		Expect(inst.Advance(2)).To(BeFalse())
		Expect(inst.Remaining()).To(BeZero())
		Expect(inst.Advance(3)).To(BeTrue())
		Expect(inst.ExecCycle).To(Equal(uint64(2)))

		inst.Write(3)
		Expect(inst.WriteCycle).To(Equal(uint64(3)))
		Expect(inst.Completed()).To(BeTrue())
	})

	DescribeTable("should follow the latency law",
		func(line string, latency uint64) {
			inst := mustParse(line)
			inst.Emit(2)

			const enter = 5
			finish := calculate(inst, enter)

			Expect(inst.StartCycle).To(Equal(uint64(enter)))
			Expect(inst.ExecCycle).To(Equal(uint64(enter + latency - 1)))
			Expect(finish).To(Equal(uint64(enter + latency)))
		},
		Entry("ADDD", "ADDD F0 F2 F4", uint64(2)),
		Entry("SUBD", "SUBD F0 F2 F4", uint64(2)),
		Entry("MULTD", "MULTD F0 F2 F4", uint64(10)),
		Entry("DIVD", "DIVD F0 F2 F4", uint64(20)),
		Entry("SD", "SD F0 0 R1", uint64(2)),
	)

	It("should honor an overridden latency", func() {
		inst := mustParse("ADDD F0 F2 F4")
		inst.Latency = 4
		inst.Emit(1)
		calculate(inst, 1)
		Expect(inst.ExecCycle).To(Equal(uint64(4)))
	})

	It("should fall back to the opcode latency when unset", func() {
		inst := &insts.Instruction{Op: insts.OpDIVD}
		inst.Emit(1)
		Expect(inst.Latency).To(Equal(uint64(20)))
	})

	It("should stop reporting after finishing", func() {
		inst := mustParse("ADDD F0 F2 F4")
		inst.Emit(1)
		calculate(inst, 1)
		Expect(inst.Advance(10)).To(BeFalse())
		Expect(inst.ExecCycle).To(Equal(uint64(2)))
	})

	It("should clone without timing state", func() {
		inst := mustParse("ADDD F0 F2 F4")
		inst.Emit(1)
		inst.Advance(1)

		clone := inst.Clone()
		Expect(clone.EmitCycle).To(BeZero())
		Expect(clone.StartCycle).To(BeZero())
		Expect(clone.Src1).To(BeIdenticalTo(inst.Src1))
		Expect(clone.Latency).To(Equal(inst.Latency))
	})
})
