// Package notify emails guardians when a save leaves one or more platforms
// out of date.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	familymodels "pcps/internal/family/models"
	"pcps/internal/syncengine"
	"pcps/pkg/email"
	"pcps/pkg/requestcontext"
)

// SESAPI is the subset of the SES v2 client used here.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier sends one email per guardian with an address. A Notifier with no
// client or sender address is disabled and sends nothing.
type Notifier struct {
	client SESAPI
	from   string
	logger *slog.Logger
}

type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func New(client SESAPI, fromAddress, fromName string, opts ...Option) *Notifier {
	n := &Notifier{
		client: client,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if fromAddress != "" {
		n.from = email.FormatAddress(fromName, fromAddress)
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.client != nil && n.from != ""
}

// NotifyFailures emails every guardian with an address when any result
// failed. It returns how many emails were sent; the error joins every send
// failure.
func (n *Notifier) NotifyFailures(ctx context.Context, doc *familymodels.Document, results []syncengine.Result) (int, error) {
	failed := syncengine.Failed(results)
	if !n.Enabled() || len(failed) == 0 || doc == nil {
		return 0, nil
	}

	subject := fmt.Sprintf("%d of %d platforms did not receive your family settings", len(failed), len(results))
	var sent int
	var errs []error
	for _, g := range doc.Guardians {
		to := g.Email.OrElse("")
		if to == "" || !email.Valid(to) {
			continue
		}
		msg := message{
			Greeting: email.GreetingName(g.Name, to),
			Family:   doc.FamilyName.OrElse("your family"),
			Failed:   failed,
			Total:    len(results),
		}
		if err := n.send(ctx, to, subject, msg); err != nil {
			n.logger.WarnContext(ctx, "failure notification not sent",
				"request_id", requestcontext.RequestID(ctx),
				"guardian_id", g.GuardianID,
				"to", email.Mask(to),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("notify %s: %w", g.GuardianID, err))
			continue
		}
		sent++
	}
	if sent > 0 {
		n.logger.InfoContext(ctx, "failure notifications sent",
			"request_id", requestcontext.RequestID(ctx),
			"family_id", doc.FamilyID,
			"sent", sent,
		)
	}
	return sent, errors.Join(errs...)
}

type message struct {
	Greeting string
	Family   string
	Failed   []syncengine.Result
	Total    int
}

var htmlBody = template.Must(template.New("failures").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<p>Hi {{.Greeting}},</p>
<p>Settings for {{.Family}} were saved, but {{len .Failed}} of {{.Total}} platforms did not accept them:</p>
<ul>
{{range .Failed}}<li><strong>{{.TargetName}}</strong>: {{.Message}}</li>
{{end}}</ul>
<p>The other platforms are up to date. Saving again will retry every enabled platform.</p>
</body>
</html>`))

func (m message) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", m.Greeting)
	fmt.Fprintf(&b, "Settings for %s were saved, but %d of %d platforms did not accept them:\n\n", m.Family, len(m.Failed), m.Total)
	for _, r := range m.Failed {
		fmt.Fprintf(&b, "  - %s: %s\n", r.TargetName, r.Message)
	}
	b.WriteString("\nThe other platforms are up to date. Saving again will retry every enabled platform.\n")
	return b.String()
}

func (n *Notifier) send(ctx context.Context, to, subject string, msg message) error {
	var html bytes.Buffer
	if err := htmlBody.Execute(&html, msg); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(html.String()),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(msg.text()),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
