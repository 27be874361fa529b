package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"trending_digest/internal/config"
	"trending_digest/internal/domain"
)

// sender is the subset of the Resend emails service used here.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Config struct {
	APIKey   string
	From     string
	To       string
	Template string
}

// Notifier delivers the rendered digest over Resend.
type Notifier struct {
	emails   sender
	from     string
	to       string
	template string
}

// New fails with config.ErrMissingCredential without an API key or recipient.
func New(cfg Config) (*Notifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("resend api key: %w", config.ErrMissingCredential)
	}
	if cfg.To == "" {
		return nil, fmt.Errorf("email recipient: %w", config.ErrMissingCredential)
	}

	return newNotifier(resend.NewClient(cfg.APIKey).Emails, cfg), nil
}

func newNotifier(emails sender, cfg Config) *Notifier {
	tmpl := cfg.Template
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	return &Notifier{
		emails:   emails,
		from:     cfg.From,
		to:       cfg.To,
		template: tmpl,
	}
}

func (n *Notifier) Name() string {
	return "email"
}

func (n *Notifier) Notify(ctx context.Context, digest *domain.Digest) error {
	resp, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: "GitHub Trending - " + digest.Date,
		Html:    Render(n.template, digest),
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", n.to, err)
	}
	if resp == nil || resp.Id == "" {
		return fmt.Errorf("send email to %s: empty response", n.to)
	}
	return nil
}
