// Package netlink carries the network/broker capability. The monitor core
// only ever talks to types.NetLink; the implementations here are a
// paho-backed MQTT link for host builds, an injection shim for MCU builds
// where the radio stack lives outside this firmware, and a permanently-down
// link for running without a network at all.
//
// Service additionally exposes the link on the bus: it answers status
// requests and accepts out-of-band reconnect commands, so input sources
// never need a direct reference to the link.
package netlink

import (
	"context"
	"time"

	"envmon-go/bus"
	"envmon-go/errcode"
	"envmon-go/types"
)

var (
	topicControl = bus.T("net", "control", "+")
	topicStatus  = bus.T("net", "status")
)

// Disconnected is a NetLink with no transport: always down, every publish
// skipped.
type Disconnected struct{}

func (Disconnected) IsLinkUp() bool               { return false }
func (Disconnected) IsSessionUp() bool            { return false }
func (Disconnected) Publish(string, []byte) error { return errcode.Skipped }
func (Disconnected) Reconnect()                   {}
func (Disconnected) Status() types.NetStatus {
	return types.NetStatus{Link: types.LinkDown, Session: types.LinkDown}
}

// External adapts collaborator-provided hooks to the NetLink capability.
// MCU builds use it where Wi-Fi association and the MQTT session live in a
// network co-processor or platform stack outside this firmware. Nil hooks
// degrade to a down link.
type External struct {
	LinkUpFn    func() bool
	SessionUpFn func() bool
	PublishFn   func(topic string, payload []byte) error
	ReconnectFn func()
	StatusFn    func() types.NetStatus
}

func (e *External) IsLinkUp() bool {
	return e.LinkUpFn != nil && e.LinkUpFn()
}

func (e *External) IsSessionUp() bool {
	return e.SessionUpFn != nil && e.SessionUpFn()
}

func (e *External) Publish(topic string, payload []byte) error {
	if e.PublishFn == nil || !e.IsLinkUp() || !e.IsSessionUp() {
		return errcode.Skipped
	}
	return e.PublishFn(topic, payload)
}

func (e *External) Reconnect() {
	if e.ReconnectFn != nil {
		e.ReconnectFn()
	}
}

func (e *External) Status() types.NetStatus {
	if e.StatusFn != nil {
		return e.StatusFn()
	}
	return types.NetStatus{Link: types.LinkDown, Session: types.LinkDown}
}

// Service publishes the link state on the bus and serves control verbs.
type Service struct {
	link types.NetLink
}

func NewService(link types.NetLink) *Service {
	return &Service{link: link}
}

// Start runs the service loop in a goroutine: retained status every refresh
// tick, plus "reconnect" and "status" control handling.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	ctl := conn.Subscribe(topicControl)
	defer conn.Unsubscribe(ctl)

	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()

	s.publishStatus(conn)

	for {
		select {
		case <-ctx.Done():
			println("Info: netlink service stopping")
			return
		case <-tick.C:
			s.publishStatus(conn)
		case msg := <-ctl.Channel():
			s.handleControl(conn, msg)
		}
	}
}

func (s *Service) handleControl(conn *bus.Connection, msg *bus.Message) {
	verb, _ := msg.Topic.At(msg.Topic.Len() - 1).(string)
	switch verb {
	case "reconnect":
		println("Info: netlink reconnect requested")
		s.link.Reconnect()
		s.publishStatus(conn)
		conn.Reply(msg, s.link.Status(), false)
	case "status":
		conn.Reply(msg, s.link.Status(), false)
	default:
		conn.Reply(msg, errcode.Unsupported, false)
	}
}

func (s *Service) publishStatus(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(topicStatus, s.link.Status(), true))
}
