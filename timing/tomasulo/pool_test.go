package tomasulo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

var _ = Describe("Pool", func() {
	var (
		pool   *tomasulo.Pool
		fu     *tomasulo.FUTable
		parser *insts.Parser
	)

	mustParse := func(line string) *insts.Instruction {
		inst, err := parser.Parse(line)
		Expect(err).NotTo(HaveOccurred())
		return inst
	}

	tag := func(kind insts.StationKind, index uint8) tomasulo.Tag {
		return tomasulo.Tag{Kind: kind, Index: index}
	}

	BeforeEach(func() {
		pool = tomasulo.NewPool(tomasulo.DefaultConfig().Stations)
		fu = tomasulo.NewFUTable()
		parser = insts.NewParser()
	})

	It("should create stations grouped by kind", func() {
		names := []string{}
		for _, s := range pool.Stations() {
			Expect(s.State).To(Equal(tomasulo.StateFree))
			names = append(names, s.Tag.String())
		}

		Expect(names).To(Equal([]string{
			"ADD0", "ADD1", "ADD2",
			"MULT0", "MULT1",
			"LOAD0", "LOAD1", "LOAD2",
			"STORE0", "STORE1", "STORE2",
		}))
	})

	It("should find the first free station of a kind", func() {
		t, ok := pool.FindFree(insts.StationMult)
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(tag(insts.StationMult, 0)))

		Expect(pool.Apply(t, mustParse("MULTD F0 F2 F4"), fu, 1)).To(Succeed())

		t, ok = pool.FindFree(insts.StationMult)
		Expect(ok).To(BeTrue())
		Expect(t).To(Equal(tag(insts.StationMult, 1)))

		Expect(pool.Apply(t, mustParse("MULTD F6 F2 F4"), fu, 2)).To(Succeed())

		_, ok = pool.FindFree(insts.StationMult)
		Expect(ok).To(BeFalse())
		Expect(pool.Busy()).To(Equal(2))
	})

	Context("when applying", func() {
		It("should resolve arithmetic sources from the table", func() {
			fu.MarkBusy(emu.FP(2), tag(insts.StationLoad, 1))

			t := tag(insts.StationMult, 0)
			inst := mustParse("MULTD F0 F2 F4")
			Expect(pool.Apply(t, inst, fu, 3)).To(Succeed())

			s := pool.Station(t)
			Expect(s.State).To(Equal(tomasulo.StateBusy))
			Expect(s.Inst).To(BeIdenticalTo(inst))
			Expect(s.Vj).To(BeNil())
			Expect(*s.Qj).To(Equal(tag(insts.StationLoad, 1)))
			Expect(s.Vk.String()).To(Equal("4.00"))
			Expect(s.Qk).To(BeNil())
			Expect(inst.EmitCycle).To(Equal(uint64(3)))
		})

		It("should take the base address of a load as is", func() {
			t := tag(insts.StationLoad, 0)
			Expect(pool.Apply(t, mustParse("LD F6 34+ R2"), fu, 1)).To(Succeed())

			s := pool.Station(t)
			Expect(s.Addr.String()).To(Equal("R2"))
			Expect(s.Vk.String()).To(Equal("34"))
			Expect(s.Qk).To(BeNil())
			Expect(s.Vj).To(BeNil())
			Expect(s.Qj).To(BeNil())
		})

		It("should read the stored register of a store", func() {
			fu.MarkBusy(emu.FP(6), tag(insts.StationMult, 1))

			t := tag(insts.StationStore, 0)
			Expect(pool.Apply(t, mustParse("SD F6 0 R3"), fu, 6)).To(Succeed())

			s := pool.Station(t)
			Expect(*s.Qj).To(Equal(tag(insts.StationMult, 1)))
			Expect(s.Vk.String()).To(Equal("0"))
			Expect(s.Addr.String()).To(Equal("R3"))
		})

		It("should reject an arithmetic operand that is not a unit", func() {
			t := tag(insts.StationAdd, 0)
			err := pool.Apply(t, mustParse("ADDD F0 R1 F2"), fu, 1)

			var invariant *tomasulo.InvariantError
			Expect(err).To(BeAssignableToTypeOf(invariant))
			Expect(err.Error()).To(ContainSubstring("R1"))
			Expect(pool.Station(t).State).To(Equal(tomasulo.StateFree))
		})

		It("should reject a station that is not free", func() {
			t := tag(insts.StationAdd, 0)
			Expect(pool.Apply(t, mustParse("ADDD F0 F2 F4"), fu, 1)).To(Succeed())

			err := pool.Apply(t, mustParse("ADDD F6 F2 F4"), fu, 2)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("ADD0 is Busy"))
		})

		It("should reject a station of the wrong kind", func() {
			err := pool.Apply(tag(insts.StationAdd, 0), mustParse("MULTD F0 F2 F4"), fu, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when ticking", func() {
		It("should calculate for the instruction latency", func() {
			t := tag(insts.StationAdd, 0)
			inst := mustParse("ADDD F0 F2 F4")
			Expect(pool.Apply(t, inst, fu, 1)).To(Succeed())

			Expect(pool.Tick(fu, 1)).To(BeEmpty())
			Expect(pool.Station(t).State).To(Equal(tomasulo.StateCalculating))
			Expect(pool.Tick(fu, 2)).To(BeEmpty())
			Expect(pool.Tick(fu, 3)).To(Equal([]tomasulo.Tag{t}))

			Expect(pool.Station(t).State).To(Equal(tomasulo.StateReady))
			Expect(inst.StartCycle).To(Equal(uint64(1)))
			Expect(inst.ExecCycle).To(Equal(uint64(2)))
			Expect(pool.Station(t).Result(true).String()).To(Equal("6.00"))
		})

		It("should keep a station with a pending operand busy", func() {
			producer := tag(insts.StationLoad, 0)
			fu.MarkBusy(emu.FP(2), producer)

			t := tag(insts.StationAdd, 0)
			Expect(pool.Apply(t, mustParse("ADDD F0 F2 F4"), fu, 1)).To(Succeed())

			pool.Tick(fu, 1)
			pool.Tick(fu, 2)
			Expect(pool.Station(t).State).To(Equal(tomasulo.StateBusy))
		})

		It("should pick up a written value by polling", func() {
			producer := tag(insts.StationLoad, 0)
			fu.MarkBusy(emu.FP(2), producer)

			t := tag(insts.StationAdd, 0)
			Expect(pool.Apply(t, mustParse("ADDD F0 F2 F4"), fu, 1)).To(Succeed())

			pool.Tick(fu, 1)
			fu.MarkReady(emu.FP(2), producer, emu.Float(1))
			pool.Tick(fu, 2)

			s := pool.Station(t)
			Expect(s.Qj).To(BeNil())
			Expect(s.Vj.String()).To(Equal("1.00"))

			pool.Tick(fu, 3)
			Expect(s.State).To(Equal(tomasulo.StateCalculating))
			Expect(s.Inst.StartCycle).To(Equal(uint64(3)))
		})
	})

	Context("when broadcasting", func() {
		It("should deliver the value and clear the wait tags", func() {
			producer := tag(insts.StationMult, 0)
			fu.MarkBusy(emu.FP(0), producer)

			t := tag(insts.StationAdd, 0)
			Expect(pool.Apply(t, mustParse("ADDD F6 F0 F0"), fu, 2)).To(Succeed())

			n := pool.Broadcast(producer, emu.Float(5))
			Expect(n).To(Equal(1))

			s := pool.Station(t)
			Expect(s.Qj).To(BeNil())
			Expect(s.Qk).To(BeNil())
			Expect(s.Vj.String()).To(Equal("5.00"))
			Expect(s.Vk.String()).To(Equal("5.00"))
		})

		It("should ignore stations waiting on another tag", func() {
			fu.MarkBusy(emu.FP(0), tag(insts.StationMult, 0))

			t := tag(insts.StationAdd, 0)
			Expect(pool.Apply(t, mustParse("ADDD F6 F0 F2"), fu, 2)).To(Succeed())

			Expect(pool.Broadcast(tag(insts.StationMult, 1), emu.Float(5))).To(Equal(0))
			Expect(pool.Station(t).Qj).NotTo(BeNil())
		})
	})

	It("should only release a ready station", func() {
		t := tag(insts.StationAdd, 0)
		Expect(pool.Apply(t, mustParse("ADDD F0 F2 F4"), fu, 1)).To(Succeed())
		Expect(pool.Release(t)).NotTo(Succeed())

		pool.Tick(fu, 1)
		pool.Tick(fu, 2)
		pool.Tick(fu, 3)

		Expect(pool.Release(t)).To(Succeed())

		s := pool.Station(t)
		Expect(s.State).To(Equal(tomasulo.StateFree))
		Expect(s.Inst).To(BeNil())
		Expect(s.Vj).To(BeNil())
		Expect(s.Vk).To(BeNil())
	})
})
