package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/maisrole-api/pkg/mailer/templates"
)

// ErrPermanent marks jobs that can never succeed and must not be requeued.
var ErrPermanent = errors.New("permanent job failure")

// Worker renders queued EmailJobs and hands them to a Sender.
type Worker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Handle processes one message body. Errors wrapping ErrPermanent mean the
// message should be dropped; anything else may be retried.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return oops.Code("MAIL_BAD_MESSAGE").Wrap(errors.Join(ErrPermanent, err))
	}
	if job.To == "" {
		return oops.Code("MAIL_NO_RECIPIENT").With("event", job.Event).Wrap(ErrPermanent)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return oops.Code("MAIL_UNKNOWN_TEMPLATE").With("template", job.Template).Wrap(ErrPermanent)
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return oops.Code("MAIL_RENDER_FAILED").With("template", job.Template).Wrap(errors.Join(ErrPermanent, err))
		}
		subject, text, html = s, t, h
	}
	if subject == "" {
		return oops.Code("MAIL_NO_SUBJECT").With("event", job.Event).Wrap(ErrPermanent)
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	return w.Sender.Send(c, job.To, subject, text, html)
}

// Run consumes deliveries until ctx is done or the channel closes. Permanent
// failures are dropped, transient ones requeued once.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	err := w.Handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, ErrPermanent):
		w.Logger.WithError(err).WithField("delivery_tag", d.DeliveryTag).Warn("dropping email job")
		_ = d.Nack(false, false)
	default:
		requeue := !d.Redelivered
		w.Logger.WithError(err).WithFields(logrus.Fields{
			"delivery_tag": d.DeliveryTag,
			"requeue":      requeue,
		}).Error("email send failed")
		_ = d.Nack(false, requeue)
	}
}
