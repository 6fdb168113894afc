// Package bus is the in-process message fabric for the firmware. Services
// (monitor, netlink, config, input sources) exchange retained state and
// events over topic paths, MQTT-style: "+" matches one level, "#" matches
// the rest of the path.
package bus

import (
	"context"
	"errors"
	"sync"
)

// Topic is a path of tokens. Tokens are strings or small ints (ints let
// numeric ids sit in topics without string conversion).
type Topic []any

// T builds a Topic from its tokens. Tokens must be strings or integers;
// anything else (non-comparable types would corrupt the trie) panics.
func T(parts ...any) Topic {
	for _, p := range parts {
		switch p.(type) {
		case string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		default:
			panic("bus: topic token must be a string or integer")
		}
	}
	return Topic(parts)
}

func (t Topic) Len() int     { return len(t) }
func (t Topic) At(i int) any { return t[i] }

func (t Topic) Equal(o Topic) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

const (
	wildOne = "+" // single level
	wildAll = "#" // this level and everything below
)

// Message is one published datum. Retained messages are stored at their
// topic node and replayed to late subscribers. ReplyTo carries the topic a
// responder should answer on (see Connection.RequestWait).
type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

type Bus struct {
	mu       sync.Mutex
	root     *node
	qLen     int
	replySeq int
}

// NewBus creates a bus whose subscriptions buffer queueLen messages each.
// A full subscription queue drops its oldest entry rather than blocking the
// publisher.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// Publish delivers msg to every matching subscription and updates retained
// state. A retained message with a nil payload clears the retained slot.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deliver(b.root, msg.Topic, msg)

	if msg.Retained {
		n := b.root
		for _, tok := range msg.Topic {
			if n.children == nil {
				n.children = make(map[any]*node)
			}
			child, ok := n.children[tok]
			if !ok {
				child = &node{}
				n.children[tok] = child
			}
			n = child
		}
		if msg.Payload == nil {
			n.retained = nil
		} else {
			n.retained = msg
		}
	}
}

// deliver walks the trie matching the concrete topic against stored
// subscription paths, which may contain wildcards.
func (b *Bus) deliver(n *node, rest Topic, msg *Message) {
	// "#" at this level matches the remainder, including the empty one.
	if h, ok := n.children[any(wildAll)]; ok {
		for _, sub := range h.subs {
			b.push(sub, msg)
		}
	}
	if len(rest) == 0 {
		for _, sub := range n.subs {
			b.push(sub, msg)
		}
		return
	}
	if child, ok := n.children[rest[0]]; ok {
		b.deliver(child, rest[1:], msg)
	}
	if plus, ok := n.children[any(wildOne)]; ok {
		b.deliver(plus, rest[1:], msg)
	}
}

func (b *Bus) push(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		// Queue full: drop oldest, keep newest.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		if n.children == nil {
			n.children = make(map[any]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	b.replayRetained(b.root, sub.topic, sub)
}

// replayRetained mirrors deliver with the roles swapped: the subscription
// path (possibly holding wildcards) walks the concrete retained tree.
func (b *Bus) replayRetained(n *node, pattern Topic, sub *Subscription) {
	if len(pattern) == 0 {
		if n.retained != nil {
			b.push(sub, n.retained)
		}
		return
	}
	switch pattern[0] {
	case any(wildAll):
		b.replayAll(n, sub)
	case any(wildOne):
		for _, child := range n.children {
			b.replayRetained(child, pattern[1:], sub)
		}
	default:
		if child, ok := n.children[pattern[0]]; ok {
			b.replayRetained(child, pattern[1:], sub)
		}
	}
}

func (b *Bus) replayAll(n *node, sub *Subscription) {
	if n.retained != nil {
		b.push(sub, n.retained)
	}
	for _, child := range n.children {
		b.replayAll(child, sub)
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, tok := range sub.topic {
		child, ok := n.children[tok]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune empty nodes bottom-up.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := sub.topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

// Connection is a named attachment to the bus owning its subscriptions.
type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// ErrNoReply is returned by RequestWait when the context expires first.
var ErrNoReply = errors.New("bus: no reply")

// Request publishes msg with a fresh ReplyTo topic and returns the
// subscription replies arrive on. The caller owns the subscription.
func (c *Connection) Request(msg *Message) *Subscription {
	c.bus.mu.Lock()
	c.bus.replySeq++
	seq := c.bus.replySeq
	c.bus.mu.Unlock()

	reply := T("$reply", c.id, seq)
	sub := c.Subscribe(reply)
	msg.ReplyTo = reply
	c.bus.Publish(msg)
	return sub
}

// Reply answers msg on its ReplyTo topic. Requests without one are ignored.
func (c *Connection) Reply(msg *Message, payload any, retained bool) {
	if len(msg.ReplyTo) == 0 {
		return
	}
	c.bus.Publish(&Message{Topic: msg.ReplyTo, Payload: payload, Retained: retained})
}

// RequestWait publishes msg with a fresh ReplyTo topic and blocks for the
// first reply or ctx expiry. Responders answer by publishing to msg.ReplyTo.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)

	select {
	case m := <-sub.ch:
		return m, nil
	case <-ctx.Done():
		return nil, ErrNoReply
	}
}

// Disconnect tears down every subscription owned by this connection.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}
