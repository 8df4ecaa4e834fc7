package amazon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

// EmailTemplate is a stored SES template.
type EmailTemplate struct {
	Name    string
	Subject string
	Text    string
	HTML    string
}

func (t EmailTemplate) sdk() *sestypes.Template {
	return &sestypes.Template{
		TemplateName: aws.String(t.Name),
		SubjectPart:  aws.String(t.Subject),
		TextPart:     optional(t.Text),
		HtmlPart:     optional(t.HTML),
	}
}

// SendEmail sends an SES templated email. A subject override is written back
// to the stored template before sending, since SES takes the subject from
// the template.
func (n *Notifier) SendEmail(ctx context.Context, req notification.EmailRequest) (*notification.Receipt, error) {
	if req.Subject != "" {
		if err := n.overrideSubject(ctx, req.Template, req.Subject); err != nil {
			return nil, err
		}
	}

	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	templateData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template data: %w", err)
	}

	out, err := n.ses.SendTemplatedEmail(ctx, &ses.SendTemplatedEmailInput{
		Source:       aws.String(req.Sender),
		Template:     aws.String(req.Template),
		TemplateData: aws.String(string(templateData)),
		Destination: &sestypes.Destination{
			ToAddresses:  req.Recipients,
			CcAddresses:  req.CC,
			BccAddresses: req.BCC,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ses send templated email: %w", err)
	}

	n.logger.Debug("SES email sent", "template", req.Template, "recipients", len(req.Recipients))
	return &notification.Receipt{
		Provider:   ProviderName,
		MessageIDs: []string{aws.ToString(out.MessageId)},
		Raw:        out,
	}, nil
}

func (n *Notifier) overrideSubject(ctx context.Context, templateName, subject string) error {
	got, err := n.ses.GetTemplate(ctx, &ses.GetTemplateInput{TemplateName: aws.String(templateName)})
	if err != nil {
		return fmt.Errorf("ses get template %s: %w", templateName, err)
	}
	if got.Template == nil {
		return fmt.Errorf("ses get template %s: empty template in response", templateName)
	}

	tpl := *got.Template
	tpl.SubjectPart = aws.String(subject)
	if _, err := n.ses.UpdateTemplate(ctx, &ses.UpdateTemplateInput{Template: &tpl}); err != nil {
		return fmt.Errorf("ses update template subject: %w", err)
	}
	return nil
}

// CreateEmailTemplate stores a new SES template.
func (n *Notifier) CreateEmailTemplate(ctx context.Context, t EmailTemplate) (*ses.CreateTemplateOutput, error) {
	out, err := n.ses.CreateTemplate(ctx, &ses.CreateTemplateInput{Template: t.sdk()})
	if err != nil {
		return nil, fmt.Errorf("ses create template: %w", err)
	}
	return out, nil
}

// UpdateEmailTemplate replaces every part of an existing SES template.
func (n *Notifier) UpdateEmailTemplate(ctx context.Context, t EmailTemplate) (*ses.UpdateTemplateOutput, error) {
	out, err := n.ses.UpdateTemplate(ctx, &ses.UpdateTemplateInput{Template: t.sdk()})
	if err != nil {
		return nil, fmt.Errorf("ses update template: %w", err)
	}
	return out, nil
}

// GetEmailTemplate returns the stored SES template.
func (n *Notifier) GetEmailTemplate(ctx context.Context, name string) (*ses.GetTemplateOutput, error) {
	out, err := n.ses.GetTemplate(ctx, &ses.GetTemplateInput{TemplateName: aws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("ses get template: %w", err)
	}
	return out, nil
}

// DeleteEmailTemplate removes an SES template.
func (n *Notifier) DeleteEmailTemplate(ctx context.Context, name string) (*ses.DeleteTemplateOutput, error) {
	out, err := n.ses.DeleteTemplate(ctx, &ses.DeleteTemplateInput{TemplateName: aws.String(name)})
	if err != nil {
		return nil, fmt.Errorf("ses delete template: %w", err)
	}
	return out, nil
}

// ListEmailTemplates returns one page of template metadata. Pass the previous
// output's NextToken to continue, or "" for the first page.
func (n *Notifier) ListEmailTemplates(ctx context.Context, nextToken string) (*ses.ListTemplatesOutput, error) {
	out, err := n.ses.ListTemplates(ctx, &ses.ListTemplatesInput{NextToken: optional(nextToken)})
	if err != nil {
		return nil, fmt.Errorf("ses list templates: %w", err)
	}
	return out, nil
}
