package messaging

import (
	"context"

	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/application"
	"github.com/oksasatya/maisrole-api/pkg/mailer"
	mailtpl "github.com/oksasatya/maisrole-api/pkg/mailer/templates"
)

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Branding is merged into every account email.
type Branding struct {
	CompanyName string
	AppBaseURL  string
	SupportURL  string
}

// AccountNotifier turns account events into queued email jobs.
type AccountNotifier struct {
	pub   JSONPublisher
	brand Branding
}

func NewAccountNotifier(pub JSONPublisher, brand Branding) *AccountNotifier {
	return &AccountNotifier{pub: pub, brand: brand}
}

var templateByEvent = map[string]string{
	application.EventUserRegistered: mailtpl.Welcome,
	application.EventHostRegistered: mailtpl.Welcome,
	application.EventUserDeleted:    mailtpl.AccountDeleted,
	application.EventHostDeleted:    mailtpl.AccountDeleted,
}

// Publish enqueues the email for ev. Events without an address or template
// are skipped.
func (n *AccountNotifier) Publish(ctx context.Context, ev application.AccountEvent) error {
	tpl, ok := templateByEvent[ev.Type]
	if !ok || ev.Email == "" {
		return nil
	}
	job := mailer.EmailJob{
		To:       ev.Email,
		Template: tpl,
		Event:    ev.Type,
		Data: mailtpl.ToMap(mailtpl.EmailData{
			Name:        ev.Name,
			Email:       ev.Email,
			AccountKind: string(ev.Kind),
			CompanyName: n.brand.CompanyName,
			AppBaseURL:  n.brand.AppBaseURL,
			SupportURL:  n.brand.SupportURL,
			OccurredAt:  ev.OccurredAt,
		}),
	}
	if err := n.pub.PublishJSON(ctx, job); err != nil {
		return oops.Code("ACCOUNT_EVENT_PUBLISH_FAILED").
			With("event", ev.Type).
			With("account_id", ev.AccountID).
			Wrap(err)
	}
	return nil
}
