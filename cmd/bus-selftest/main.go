//go:build rp2040 || rp2350

// On-device check of the bus: the host test suite covers the same ground,
// but the MCU scheduler and allocator have their own timing, so the core
// delivery guarantees are verified on the board itself. All tests pass:
// LED solid. Any failure: LED blinks forever.
package main

import (
	"context"
	"machine"
	"time"

	"envmon-go/bus"
)

func expectPayload(sub *bus.Subscription, want any, timeout time.Duration) bool {
	select {
	case got := <-sub.Channel():
		return got.Payload == want
	case <-time.After(timeout):
		return false
	}
}

func expectNothing(sub *bus.Subscription, timeout time.Duration) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(timeout):
		return true
	}
}

func testBasicPubSub() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("selftest")
	sub := c.Subscribe(bus.T("config", "monitor"))
	c.Publish(c.NewMessage(bus.T("config", "monitor"), "hello", false))
	return expectPayload(sub, "hello", 100*time.Millisecond)
}

func testRetainedReplay() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("selftest")
	c.Publish(c.NewMessage(bus.T("net", "status"), "down", true))
	sub := c.Subscribe(bus.T("net", "status"))
	return expectPayload(sub, "down", 100*time.Millisecond)
}

func testRetainedClear() bool {
	b := bus.NewBus(4)
	c := b.NewConnection("selftest")
	c.Publish(c.NewMessage(bus.T("net", "status"), "up", true))
	c.Publish(c.NewMessage(bus.T("net", "status"), nil, true))
	sub := c.Subscribe(bus.T("net", "status"))
	return expectNothing(sub, 60*time.Millisecond)
}

func testWildcardSingleLevel() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")
	hit := c.Subscribe(bus.T("net", "+", "reconnect"))
	miss := c.Subscribe(bus.T("net", "+", "status"))
	c.Publish(c.NewMessage(bus.T("net", "control", "reconnect"), "go", false))
	return expectPayload(hit, "go", 100*time.Millisecond) &&
		expectNothing(miss, 60*time.Millisecond)
}

func testWildcardMultiLevel() bool {
	b := bus.NewBus(8)
	c := b.NewConnection("selftest")
	all := c.Subscribe(bus.T("config", "#"))
	c.Publish(c.NewMessage(bus.T("config", "monitor", "thresholds"), "t", false))
	c.Publish(c.NewMessage(bus.T("config"), "root", false))
	return expectPayload(all, "t", 100*time.Millisecond) &&
		expectPayload(all, "root", 100*time.Millisecond)
}

func testQueueDropsOldest() bool {
	b := bus.NewBus(2)
	c := b.NewConnection("selftest")
	sub := c.Subscribe(bus.T("input", "button"))
	for i := 0; i < 5; i++ {
		c.Publish(c.NewMessage(bus.T("input", "button"), i, false))
	}
	// Oldest entries were dropped; the newest must still be present.
	last := -1
	for {
		select {
		case m := <-sub.Channel():
			last, _ = m.Payload.(int)
		case <-time.After(60 * time.Millisecond):
			return last == 4
		}
	}
}

func testRequestReply() bool {
	b := bus.NewBus(4)
	cli := b.NewConnection("cli")
	srv := b.NewConnection("srv")

	reqs := srv.Subscribe(bus.T("net", "control", "status"))
	go func() {
		if m, ok := <-reqs.Channel(); ok {
			srv.Reply(m, "ok", false)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	reply, err := cli.RequestWait(ctx, cli.NewMessage(bus.T("net", "control", "status"), nil, false))
	srv.Unsubscribe(reqs)
	return err == nil && reply.Payload == "ok"
}

func testRequestTimeout() bool {
	b := bus.NewBus(4)
	cli := b.NewConnection("cli")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := cli.RequestWait(ctx, cli.NewMessage(bus.T("nobody", "home"), nil, false))
	return err != nil
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	tests := []struct {
		name string
		fn   func() bool
	}{
		{"basic_pubsub", testBasicPubSub},
		{"retained_replay", testRetainedReplay},
		{"retained_clear", testRetainedClear},
		{"wildcard_single", testWildcardSingleLevel},
		{"wildcard_multi", testWildcardMultiLevel},
		{"queue_drops_oldest", testQueueDropsOldest},
		{"request_reply", testRequestReply},
		{"request_timeout", testRequestTimeout},
	}

	failed := 0
	println("== bus self-test starting ==")
	for _, tc := range tests {
		if tc.fn() {
			println("[PASS]", tc.name)
		} else {
			println("[FAIL]", tc.name)
			failed++
		}
		time.Sleep(10 * time.Millisecond)
	}
	println("== done, failures:", failed, "==")

	if failed == 0 {
		for {
			led.High()
			time.Sleep(2 * time.Second)
		}
	}
	for {
		led.High()
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
