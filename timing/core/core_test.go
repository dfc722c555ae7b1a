package core_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

type cycleRecorder struct {
	engine sim.Engine
	freq   sim.Freq

	cycles     []uint64
	engineTime []uint64
}

func (r *cycleRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos != tomasulo.HookPosCycleEnd {
		return
	}

	snap := ctx.Item.(tomasulo.Snapshot)
	r.cycles = append(r.cycles, snap.Cycle)
	r.engineTime = append(r.engineTime, r.freq.Cycle(r.engine.CurrentTime()))
}

var _ = Describe("Core", func() {
	var (
		engine   *sim.SerialEngine
		executer *tomasulo.Executer
		c        *core.Core
		parser   *insts.Parser
	)

	program := func(lines ...string) []*insts.Instruction {
		list := make([]*insts.Instruction, 0, len(lines))
		for _, line := range lines {
			inst, err := parser.Parse(line)
			Expect(err).NotTo(HaveOccurred())
			list = append(list, inst)
		}
		return list
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		executer = tomasulo.NewExecuter()
		parser = insts.NewParser()
		c = core.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithExecuter(executer).
			Build("Core")
	})

	It("should create a named core", func() {
		Expect(c.Name()).To(Equal("Core"))
		Expect(c.Executer()).To(BeIdenticalTo(executer))
	})

	It("should create a default executer", func() {
		other := core.MakeBuilder().WithEngine(engine).Build("Other")
		Expect(other.Executer()).NotTo(BeNil())
	})

	It("should panic without an engine", func() {
		Expect(func() { core.MakeBuilder().Build("Core") }).To(Panic())
	})

	It("should be halted without a program", func() {
		Expect(c.Halted()).To(BeTrue())
		Expect(c.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(BeZero())
	})

	It("should run a program to completion", func() {
		executer.AddInsts(program(
			"LD F6 34+ R2",
			"LD F2 45+ R3",
			"MULTD F0 F2 F4",
		))

		Expect(c.Run()).To(Succeed())
		Expect(c.Halted()).To(BeTrue())

		stats := c.Stats()
		Expect(stats.Cycles).To(Equal(uint64(15)))
		Expect(stats.Instructions).To(Equal(uint64(3)))
		Expect(stats.CPI()).To(Equal(5.0))
	})

	It("should execute cycle N at engine cycle N", func() {
		recorder := &cycleRecorder{engine: engine, freq: 1 * sim.GHz}
		c.AcceptHook(recorder)

		executer.AddInsts(program("ADDD F0 F2 F4", "MULTD F6 F0 F2"))
		Expect(c.Run()).To(Succeed())

		Expect(recorder.cycles).To(HaveLen(int(executer.Cycle())))
		Expect(recorder.engineTime).To(Equal(recorder.cycles))
		Expect((1 * sim.GHz).Cycle(engine.CurrentTime())).
			To(Equal(executer.Cycle()))
	})

	It("should stop ticking when the scheduler fails", func() {
		executer.AddInsts(program("ADDD F0 R1 F2"))

		err := c.Run()
		Expect(err).To(HaveOccurred())
		Expect(c.Err()).To(MatchError(err))
		Expect(c.Halted()).To(BeTrue())
		Expect(executer.Cycle()).To(Equal(uint64(1)))
	})

	It("should reset", func() {
		executer.AddInsts(program("ADDD F0 F2 F4"))
		Expect(c.Run()).To(Succeed())

		c.Reset()
		Expect(c.Stats().Cycles).To(BeZero())
		Expect(c.Err()).NotTo(HaveOccurred())
	})
})
