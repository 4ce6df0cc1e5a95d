package operation

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/motorlib/logging"
)

func TestBasic(t *testing.T) {
	ctx := context.Background()

	logger := logging.NewTestLogger(t)
	clk := clock.NewMock()
	h := NewManager(logger, clk)
	o := Get(ctx)
	test.That(t, o, test.ShouldBeNil)

	test.That(t, len(h.All()), test.ShouldEqual, 0)

	func() {
		ctx2, cleanup := h.Create(ctx, "GoTo", map[string]float64{"position": 10})
		defer cleanup()

		test.That(t, func() { h.Create(ctx2, "Jog", nil) }, test.ShouldPanic)

		o := Get(ctx2)
		test.That(t, o, test.ShouldNotBeNil)
		test.That(t, o.ID.String(), test.ShouldNotEqual, "")
		test.That(t, o.Method, test.ShouldEqual, "GoTo")
		test.That(t, o.Started, test.ShouldEqual, clk.Now())
		test.That(t, len(h.All()), test.ShouldEqual, 1)
		test.That(t, h.All()[0].ID, test.ShouldEqual, o.ID)
		test.That(t, h.Find(o.ID).ID, test.ShouldEqual, o.ID)
		test.That(t, h.FindString(o.ID.String()).ID, test.ShouldEqual, o.ID)
	}()

	test.That(t, len(h.All()), test.ShouldEqual, 0)

	func() {
		ctx2, cleanup2 := h.Create(ctx, "a", nil)
		defer cleanup2()

		ctx3, cleanup3 := h.Create(ctx, "b", nil)
		defer cleanup3()

		CancelOtherWithLabel(ctx2, "axis")
		CancelOtherWithLabel(ctx3, "axis")
		CancelOtherWithLabel(ctx, "axis")

		test.That(t, ctx3.Err(), test.ShouldBeNil)
		test.That(t, ctx2.Err(), test.ShouldNotBeNil)
		test.That(t, Get(ctx3).HasLabel("axis"), test.ShouldBeTrue)
		test.That(t, Get(ctx3).HasLabel("other"), test.ShouldBeFalse)
	}()
}

func TestCleanupCancelsContext(t *testing.T) {
	h := NewManager(nil, nil)
	ctx, cleanup := h.Create(context.Background(), "Stop", nil)
	test.That(t, ctx.Err(), test.ShouldBeNil)
	cleanup()
	test.That(t, ctx.Err(), test.ShouldNotBeNil)
	test.That(t, h.Find(Get(ctx).ID), test.ShouldBeNil)
	test.That(t, time.Since(Get(ctx).Started), test.ShouldBeLessThan, time.Minute)
}
