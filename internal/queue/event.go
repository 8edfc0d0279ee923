// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailQueueName is the durable queue carrying outbound mail requests.
const EmailQueueName = "email.outbound"

// EmailRequestedEvent is published whenever a handler wants an email
// delivered (password reset, magic link). Delivery happens out of
// band: a publish failure is logged and the primary response is never
// blocked on it.
type EmailRequestedEvent struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
	Text        string `json:"text"`
	Kind        string `json:"kind"` // password_reset | magic_link
	RequestedAt string `json:"requested_at"`
}
