package service

import (
	"context"
	"sync"
)

// captureSender records every message and answers from a script.
type captureSender struct {
	mu       sync.Mutex
	sent     []Message
	reject   map[string]bool  // destinatarios no aceptados
	fail     map[string]error // destinatarios que fallan con error
	verifyFn func(ctx context.Context) error
}

func newCaptureSender() *captureSender {
	return &captureSender{reject: map[string]bool{}, fail: map[string]error{}}
}

func (c *captureSender) Name() string { return "capture" }

func (c *captureSender) Send(_ context.Context, msg Message) (SendResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)

	if err := c.fail[msg.To]; err != nil {
		return SendResult{Rejected: []string{msg.To}}, err
	}
	if c.reject[msg.To] {
		return SendResult{Rejected: []string{msg.To}, Response: "550 rejected"}, nil
	}
	return SendResult{MessageID: "<id@test>", Accepted: []string{msg.To}, Response: "250 OK"}, nil
}

func (c *captureSender) Verify(ctx context.Context) error {
	if c.verifyFn != nil {
		return c.verifyFn(ctx)
	}
	return nil
}

func (c *captureSender) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sent...)
}

type staticTemplates struct {
	cliente, admin string
	err            error
	calls          int
}

func (s *staticTemplates) Resolve(_ context.Context, inlineCliente, inlineAdmin string) (string, string, error) {
	s.calls++
	if s.err != nil {
		return "", "", s.err
	}
	cliente, admin := s.cliente, s.admin
	if inlineCliente != "" {
		cliente = inlineCliente
	}
	if inlineAdmin != "" {
		admin = inlineAdmin
	}
	return cliente, admin, nil
}

type recordingNotifier struct {
	bodies []string
	err    error
}

func (r *recordingNotifier) NotifyBusiness(_ context.Context, body string) error {
	r.bodies = append(r.bodies, body)
	return r.err
}
