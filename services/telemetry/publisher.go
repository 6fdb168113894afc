package telemetry

import (
	"envmon-go/errcode"
	"envmon-go/types"
)

// Publisher sends the broker payloads through the NetLink collaborator.
// When the link or the broker session is down it skips silently; nothing is
// queued and nothing propagates as a failure.
type Publisher struct {
	net types.NetLink
}

func NewPublisher(net types.NetLink) *Publisher {
	return &Publisher{net: net}
}

// PublishData sends the periodic readings payload.
func (p *Publisher) PublishData(d types.SensorData) error {
	if !p.net.IsLinkUp() || !p.net.IsSessionUp() {
		return errcode.Skipped
	}
	return p.net.Publish(DataTopic, AppendData(nil, d))
}

// PublishAlerts sends the alert payload, and only while a critical
// condition holds.
func (p *Publisher) PublishAlerts(a types.AlertStatus) error {
	if !a.AnyCritical {
		return nil
	}
	if !p.net.IsLinkUp() || !p.net.IsSessionUp() {
		return errcode.Skipped
	}
	return p.net.Publish(AlertTopic, AppendAlert(nil, a))
}
