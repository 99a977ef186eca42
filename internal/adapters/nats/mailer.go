package natsadapter

import (
	"context"
	"encoding/json"
	"errors"

	nats "github.com/nats-io/nats.go"
)

// Mailer publishes mail events for a downstream mail worker. Delivery is
// fire-and-forget: publish and move on.
type Mailer struct {
	conn          *nats.Conn
	signUpSubject string
	forgotSubject string
}

type signUpEvent struct {
	To        string `json:"to"`
	FirstName string `json:"first_name"`
}

type forgotPasswordEvent struct {
	To   string `json:"to"`
	Hash string `json:"hash"`
}

func NewMailer(conn *nats.Conn, signUpSubject, forgotSubject string) (*Mailer, error) {
	if conn == nil {
		return nil, errors.New("nats connection is nil")
	}
	return &Mailer{conn: conn, signUpSubject: signUpSubject, forgotSubject: forgotSubject}, nil
}

func (m *Mailer) SendUserSignUp(_ context.Context, to, firstName string) error {
	return m.publish(m.signUpSubject, signUpEvent{To: to, FirstName: firstName})
}

func (m *Mailer) SendForgotPassword(_ context.Context, to, hash string) error {
	return m.publish(m.forgotSubject, forgotPasswordEvent{To: to, Hash: hash})
}

func (m *Mailer) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return m.conn.Publish(subject, data)
}
