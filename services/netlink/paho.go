//go:build !rp2040 && !rp2350

package netlink

import (
	"errors"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"envmon-go/types"
)

// PahoLink is the host-side NetLink: a real MQTT session to the broker
// named in the config. On hardware the session belongs to the platform
// stack; on a workstation this lets the firmware loop drive a live broker.
type PahoLink struct {
	cfg        types.NetConfig
	client     mqtt.Client
	connecting atomic.Bool
}

func NewPahoLink(cfg types.NetConfig) *PahoLink {
	l := &PahoLink{cfg: cfg}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			println("Warn: broker session lost:", err.Error())
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			println("Info: broker session up:", cfg.BrokerURL)
		})
	l.client = mqtt.NewClient(opts)
	return l
}

// Connect blocks until the first session is up or the attempt times out.
func (l *PahoLink) Connect() error {
	tok := l.client.Connect()
	if !tok.WaitTimeout(10 * time.Second) {
		return errors.New("netlink: broker connect timed out")
	}
	return tok.Error()
}

func (l *PahoLink) IsLinkUp() bool { return l.client.IsConnected() }

func (l *PahoLink) IsSessionUp() bool { return l.client.IsConnectionOpen() }

// Publish sends at QoS 0 and does not wait for the token: the caller is the
// firmware loop and must not block on the network.
func (l *PahoLink) Publish(topic string, payload []byte) error {
	tok := l.client.Publish(topic, 0, false, payload)
	return tok.Error()
}

// Reconnect kicks off a fresh connect attempt without blocking the loop.
// Repeated requests while one is in flight are ignored.
func (l *PahoLink) Reconnect() {
	if !l.connecting.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer l.connecting.Store(false)
		tok := l.client.Connect()
		tok.WaitTimeout(10 * time.Second)
		if err := tok.Error(); err != nil {
			println("Warn: reconnect failed:", err.Error())
		}
	}()
}

func (l *PahoLink) Status() types.NetStatus {
	st := types.NetStatus{
		SSID:    l.cfg.SSID,
		Link:    types.LinkDown,
		Session: types.LinkDown,
	}
	if l.IsLinkUp() {
		st.Link = types.LinkUp
	}
	if l.IsSessionUp() {
		st.Session = types.LinkUp
	}
	return st
}

func (l *PahoLink) Close() {
	l.client.Disconnect(250)
}
