package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plantsim/internal/plant"
	"github.com/san-kum/plantsim/internal/trajectory"
)

var _ = Describe("Session", func() {
	var (
		h    *Handle
		sess *Session
		id   int
	)

	call := func(method string, params any) *Response {
		id++
		req := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
		if params != nil {
			req["params"] = params
		}
		raw, err := json.Marshal(req)
		Expect(err).NotTo(HaveOccurred())

		out, ok := sess.Process(raw)
		Expect(ok).To(BeTrue())
		var rsp Response
		Expect(json.Unmarshal(out, &rsp)).To(Succeed())
		Expect(string(rsp.ID)).To(Equal(fmt.Sprint(id)))
		return &rsp
	}

	step := func(u float64) float64 {
		rsp := call(MethodStep, map[string]float64{"u": u})
		Expect(rsp.Error).To(BeNil())
		var res StepResult
		Expect(json.Unmarshal(rsp.Result, &res)).To(Succeed())
		return res.Y
	}

	initPlant := func(wn, zeta, dt float64) InitResult {
		rsp := call(MethodInit, InitParams{Wn: wn, Zeta: zeta, Dt: dt})
		Expect(rsp.Error).To(BeNil())
		var res InitResult
		Expect(json.Unmarshal(rsp.Result, &res)).To(Succeed())
		return res
	}

	BeforeEach(func() {
		h = NewHandle(nil)
		sess = NewSession(h, nil)
		id = 0
	})

	Context("before init_plant", func() {
		It("refuses steps with NOT_INITIALIZED", func() {
			rsp := call(MethodStep, map[string]float64{"u": 1})
			Expect(rsp.Error).NotTo(BeNil())
			Expect(rsp.Error.Code).To(Equal(CodeApplication))
			Expect(rsp.Error.Data.Kind).To(Equal(KindNotInitialized))
		})

		It("refuses reset with NOT_INITIALIZED", func() {
			rsp := call(MethodReset, nil)
			Expect(rsp.Error.Data.Kind).To(Equal(KindNotInitialized))
		})

		It("closes without error", func() {
			Expect(sess.Close()).To(Succeed())
		})
	})

	Context("after init_plant", func() {
		BeforeEach(func() {
			res := initPlant(10, 0.7, 0.001)
			Expect(res.Order).To(Equal(2))
			Expect(res.Reused).To(BeFalse())
		})

		It("emits the output before updating the state", func() {
			Expect(step(1)).To(Equal(0.0))
			Expect(step(1)).To(BeNumerically(">", 0))
		})

		It("matches an in-process simulator sample for sample", func() {
			m, err := plant.NewSecondOrder(10, 0.7, 0.001)
			Expect(err).NotTo(HaveOccurred())
			d, err := m.Discretize()
			Expect(err).NotTo(HaveOccurred())
			local := plant.NewSimulator()
			Expect(local.Initialize(d)).To(Succeed())

			profile := trajectory.Sine{Amplitude: 0.5, Frequency: 3}
			for k := range 200 {
				u := profile.Value(k, float64(k)*0.001)
				want, err := local.Step(u)
				Expect(err).NotTo(HaveOccurred())
				Expect(step(u)).To(Equal(want))
			}
		})

		It("reuses the discretization for identical parameters", func() {
			Expect(initPlant(10, 0.7, 0.001).Reused).To(BeTrue())
			Expect(initPlant(10, 0.7, 0.002).Reused).To(BeFalse())
		})

		It("zeroes the state on re-init", func() {
			step(1)
			step(1)
			initPlant(10, 0.7, 0.001)
			Expect(h.State().IsZero()).To(BeTrue())
		})

		It("resets on request", func() {
			step(1)
			step(1)
			rsp := call(MethodReset, nil)
			Expect(rsp.Error).To(BeNil())
			Expect(h.State().IsZero()).To(BeTrue())
			Expect(step(1)).To(Equal(0.0))
		})

		It("resets on close but keeps the model for the next session", func() {
			for range 50 {
				step(1)
			}
			Expect(h.State().IsZero()).To(BeFalse())

			Expect(sess.Close()).To(Succeed())
			Expect(h.Ready()).To(BeTrue())
			Expect(h.State().IsZero()).To(BeTrue())

			sess = NewSession(h, nil)
			Expect(step(1)).To(Equal(0.0))
			Expect(step(1)).To(BeNumerically(">", 0))
		})

		It("keeps the previous model when a re-init is rejected", func() {
			rsp := call(MethodInit, InitParams{Wn: -1, Zeta: 0.7, Dt: 0.001})
			Expect(rsp.Error.Code).To(Equal(CodeApplication))
			Expect(rsp.Error.Data.Kind).To(Equal(KindInvalidParameter))
			Expect(step(1)).To(Equal(0.0))
		})
	})

	Context("when the output overflows", func() {
		It("reports NON_FINITE_OUTPUT and recovers on reset", func() {
			initPlant(1, 0, 1)
			var rsp *Response
			for range 10 {
				rsp = call(MethodStep, map[string]float64{"u": math.MaxFloat64})
				if rsp.Error != nil {
					break
				}
			}
			Expect(rsp.Error).NotTo(BeNil())
			Expect(rsp.Error.Code).To(Equal(CodeApplication))
			Expect(rsp.Error.Data.Kind).To(Equal(KindNonFiniteOutput))
			Expect(h.State().IsZero()).To(BeFalse())

			Expect(call(MethodReset, nil).Error).To(BeNil())
			Expect(step(1)).To(Equal(0.0))
		})
	})

	DescribeTable("malformed calls",
		func(raw string, code int, kind Kind) {
			out, ok := sess.Process([]byte(raw))
			Expect(ok).To(BeTrue())
			var rsp Response
			Expect(json.Unmarshal(out, &rsp)).To(Succeed())
			Expect(rsp.Error).NotTo(BeNil())
			Expect(rsp.Error.Code).To(Equal(code))
			Expect(rsp.Error.Data.Kind).To(Equal(kind))
		},
		Entry("invalid JSON", `{"jsonrpc":`, CodeParseError, KindParseError),
		Entry("batch", `[{"jsonrpc":"2.0","id":1,"method":"plant_reset"}]`, CodeInvalidRequest, KindInvalidRequest),
		Entry("wrong version", `{"jsonrpc":"1.0","id":1,"method":"plant_reset"}`, CodeInvalidRequest, KindInvalidRequest),
		Entry("not an object", `42`, CodeInvalidRequest, KindInvalidRequest),
		Entry("unknown method", `{"jsonrpc":"2.0","id":1,"method":"plant_destroy"}`, CodeMethodNotFound, KindMethodNotFound),
		Entry("missing params", `{"jsonrpc":"2.0","id":1,"method":"plant_step"}`, CodeInvalidParams, KindInvalidParameter),
		Entry("missing dt", `{"jsonrpc":"2.0","id":1,"method":"init_plant","params":{"wn":10,"zeta":0.7}}`, CodeInvalidParams, KindInvalidParameter),
		Entry("string param", `{"jsonrpc":"2.0","id":1,"method":"plant_step","params":{"u":"1"}}`, CodeInvalidParams, KindInvalidParameter),
		Entry("overflowing param", `{"jsonrpc":"2.0","id":1,"method":"plant_step","params":[1e999]}`, CodeInvalidParams, KindInvalidParameter),
		Entry("negative damping", `{"jsonrpc":"2.0","id":1,"method":"init_plant","params":[10,-0.1,0.001]}`, CodeApplication, KindInvalidParameter),
		Entry("zero sample time", `{"jsonrpc":"2.0","id":1,"method":"init_plant","params":{"wn":10,"zeta":0.7,"dt":0}}`, CodeApplication, KindInvalidParameter),
	)

	It("accepts positional params", func() {
		out, ok := sess.Process([]byte(`{"jsonrpc":"2.0","id":"a","method":"init_plant","params":[2,0.5,0.01]}`))
		Expect(ok).To(BeTrue())
		Expect(string(out)).To(ContainSubstring(`"id":"a"`))
		Expect(string(out)).To(ContainSubstring(`"order":2`))
	})

	It("sends nothing for notifications", func() {
		_, ok := sess.Process([]byte(`{"jsonrpc":"2.0","method":"init_plant","params":[2,0.5,0.01]}`))
		Expect(ok).To(BeFalse())
		Expect(h.Ready()).To(BeTrue())
	})

	DescribeTable("error kinds",
		func(err error, kind Kind) {
			Expect(KindOf(err)).To(Equal(kind))
			if kind != KindInternal {
				Expect(errors.Is(&RemoteError{Kind: kind}, err)).To(BeTrue())
			}
		},
		Entry("invalid parameter", plant.ErrInvalidParameter, KindInvalidParameter),
		Entry("ill conditioned", plant.ErrIllConditioned, KindIllConditioned),
		Entry("not initialized", plant.ErrNotInitialized, KindNotInitialized),
		Entry("invalid span", trajectory.ErrInvalidSpan, KindInvalidSpan),
		Entry("non-finite output", ErrNonFiniteOutput, KindNonFiniteOutput),
		Entry("anything else", errors.New("boom"), KindInternal),
	)
})
