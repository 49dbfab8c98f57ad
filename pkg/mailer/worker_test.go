package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	mailtpl "github.com/oksasatya/maisrole-api/pkg/mailer/templates"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sentMail struct {
	to, subject, text, html string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (s *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, text, html})
	return nil
}

type ackCall struct {
	tag     uint64
	ack     bool
	requeue bool
}

type fakeAcker struct {
	mu    sync.Mutex
	calls []ackCall
}

func (a *fakeAcker) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ackCall{tag: tag, ack: true})
	return nil
}

func (a *fakeAcker) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ackCall{tag: tag, requeue: requeue})
	return nil
}

func (a *fakeAcker) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func newTestWorker(sender Sender) *Worker {
	logger, _ := test.NewNullLogger()
	return NewWorker(sender, logger)
}

func welcomeJob(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(EmailJob{
		To:       "ana@example.com",
		Template: mailtpl.Welcome,
		Event:    "user.registered",
		Data: mailtpl.ToMap(mailtpl.EmailData{
			Name:        "ana_lopez",
			Email:       "ana@example.com",
			AccountKind: "user",
			CompanyName: "Maisrole",
			AppBaseURL:  "https://maisrole.test",
		}),
	})
	require.NoError(t, err)
	return b
}

func TestWorkerHandle(t *testing.T) {
	t.Run("renders template and sends", func(t *testing.T) {
		sender := &fakeSender{}
		w := newTestWorker(sender)

		require.NoError(t, w.Handle(context.Background(), welcomeJob(t)))

		require.Len(t, sender.sent, 1)
		got := sender.sent[0]
		assert.Equal(t, "ana@example.com", got.to)
		assert.Equal(t, "Welcome to Maisrole, ana_lopez", got.subject)
		assert.Contains(t, got.text, "https://maisrole.test")
		assert.Contains(t, got.html, "<strong>Maisrole</strong>")
	})

	t.Run("plain job without template", func(t *testing.T) {
		sender := &fakeSender{}
		w := newTestWorker(sender)
		b, _ := json.Marshal(EmailJob{To: "a@b.c", Subject: "hi", Text: "body"})

		require.NoError(t, w.Handle(context.Background(), b))
		assert.Equal(t, "hi", sender.sent[0].subject)
	})

	permanent := []struct {
		name string
		body []byte
	}{
		{"malformed json", []byte("{")},
		{"missing recipient", []byte(`{"subject":"x"}`)},
		{"unknown template", []byte(`{"to":"a@b.c","template":"nope"}`)},
		{"missing subject", []byte(`{"to":"a@b.c","text":"x"}`)},
	}
	for _, tt := range permanent {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			err := newTestWorker(sender).Handle(context.Background(), tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPermanent)
			assert.Empty(t, sender.sent)
		})
	}

	t.Run("send failure is transient", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("mailgun down")}
		err := newTestWorker(sender).Handle(context.Background(), welcomeJob(t))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPermanent)
	})
}

func TestWorkerRun(t *testing.T) {
	sender := &fakeSender{err: nil}
	acker := &fakeAcker{}
	deliveries := make(chan amqp.Delivery, 3)
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, Body: welcomeJob(t)}
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 2, Body: []byte("not json")}
	close(deliveries)

	done := make(chan struct{})
	go func() {
		defer close(done)
		newTestWorker(sender).Run(context.Background(), deliveries)
	}()
	<-done

	assert.Equal(t, []ackCall{
		{tag: 1, ack: true},
		{tag: 2, requeue: false},
	}, acker.calls)
}

func TestWorkerRunRequeuesOnce(t *testing.T) {
	sender := &fakeSender{err: errors.New("timeout")}
	acker := &fakeAcker{}
	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 7, Body: welcomeJob(t)}
	deliveries <- amqp.Delivery{Acknowledger: acker, DeliveryTag: 8, Body: welcomeJob(t), Redelivered: true}
	close(deliveries)

	newTestWorker(sender).Run(context.Background(), deliveries)

	assert.Equal(t, []ackCall{
		{tag: 7, requeue: true},
		{tag: 8, requeue: false},
	}, acker.calls)
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	deliveries := make(chan amqp.Delivery)
	done := make(chan struct{})
	go func() {
		defer close(done)
		newTestWorker(&fakeSender{}).Run(ctx, deliveries)
	}()
	cancel()
	<-done
}
