package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Parser type", func() {
		parser := insts.NewParser()
		Expect(parser).ToNot(BeNil())
	})

	DescribeTable("opcode properties",
		func(op insts.Op, kind insts.StationKind, latency uint64, operator emu.Operator) {
			Expect(op.Station()).To(Equal(kind))
			Expect(op.DefaultLatency()).To(Equal(latency))
			Expect(op.Operator()).To(Equal(operator))
		},
		Entry("ADDD", insts.OpADDD, insts.StationAdd, uint64(2), emu.OpAdd),
		Entry("SUBD", insts.OpSUBD, insts.StationAdd, uint64(2), emu.OpSub),
		Entry("MULTD", insts.OpMULTD, insts.StationMult, uint64(10), emu.OpMul),
		Entry("DIVD", insts.OpDIVD, insts.StationMult, uint64(20), emu.OpDiv),
		Entry("LD", insts.OpLD, insts.StationLoad, uint64(2), emu.OpAdd),
		Entry("SD", insts.OpSD, insts.StationStore, uint64(2), emu.OpAdd),
	)

	It("should only let SD skip the destination write", func() {
		Expect(insts.OpSD.WritesUnit()).To(BeFalse())
		Expect(insts.OpLD.WritesUnit()).To(BeTrue())
		Expect(insts.OpDIVD.WritesUnit()).To(BeTrue())
	})

	It("should name station kinds", func() {
		Expect(insts.StationAdd.String()).To(Equal("ADD"))
		Expect(insts.StationMult.String()).To(Equal("MULT"))
		Expect(insts.StationLoad.String()).To(Equal("LOAD"))
		Expect(insts.StationStore.String()).To(Equal("STORE"))
	})
})
