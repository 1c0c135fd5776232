package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

func newMockEvent(
	ctrl *gomock.Controller,
	t VTimeInSec,
	handler Handler,
	secondary bool,
) *MockEvent {
	evt := NewMockEvent(ctrl)
	evt.EXPECT().Time().Return(t).AnyTimes()
	evt.EXPECT().Handler().Return(handler).AnyTimes()
	evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

	return evt
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should trigger events in time order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := newMockEvent(mockCtrl, 4.0, handler, false)
		evt2 := newMockEvent(mockCtrl, 2.0, handler, false)
		evt3 := newMockEvent(mockCtrl, 3.0, handler, false)

		handleEvt2 := handler.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
		})
		handleEvt3 := handler.EXPECT().Handle(evt3).After(handleEvt2)
		handler.EXPECT().Handle(evt1).After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		_ = engine.Run()
	})

	It("should trigger same-time secondary events last", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		secondary := newMockEvent(mockCtrl, 2.0, handler1, true)
		primary1 := newMockEvent(mockCtrl, 2.0, handler2, false)
		primary2 := newMockEvent(mockCtrl, 2.0, handler2, false)

		handlePrimary1 := handler2.EXPECT().Handle(primary1)
		handlePrimary2 := handler2.EXPECT().Handle(primary2)
		handler1.EXPECT().Handle(secondary).
			After(handlePrimary1).
			After(handlePrimary2)

		engine.Schedule(secondary)
		engine.Schedule(primary1)
		engine.Schedule(primary2)

		_ = engine.Run()
	})

	It("should process events at exactly the run-until time", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := newMockEvent(mockCtrl, 1.0, handler, false)
		evt2 := newMockEvent(mockCtrl, 2.0, handler, false)

		handler.EXPECT().Handle(evt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		_ = engine.RunUntil(1.0)

		Expect(engine.CurrentTime()).To(BeNumerically("==", 1.0))

		handler.EXPECT().Handle(evt2)
		_ = engine.RunUntil(2.0)
	})

	It("should panic on scheduling into the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt := newMockEvent(mockCtrl, 3.0, handler, false)

		handler.EXPECT().Handle(evt)

		engine.Schedule(evt)
		_ = engine.Run()

		late := newMockEvent(mockCtrl, 1.0, handler, false)
		Expect(func() { engine.Schedule(late) }).To(Panic())
	})

	It("should call simulation-end handlers on Finished", func() {
		called := VTimeInSec(-1)
		engine.RegisterSimulationEndHandler(endHandlerFunc(
			func(now VTimeInSec) {
				called = now
			}))

		handler := NewMockHandler(mockCtrl)
		evt := newMockEvent(mockCtrl, 5.0, handler, false)
		handler.EXPECT().Handle(evt)

		engine.Schedule(evt)
		_ = engine.Run()
		engine.Finished()

		Expect(called).To(BeNumerically("==", 5.0))
	})
})

type endHandlerFunc func(now VTimeInSec)

func (f endHandlerFunc) Handle(now VTimeInSec) {
	f(now)
}
