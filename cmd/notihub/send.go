package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tinywideclouds/go-notihub/pkg/notification"
)

func (a *app) smsCommand() *cobra.Command {
	var req notification.SMSRequest

	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Send a text message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.notifier(cmd.Context())
			if err != nil {
				return err
			}
			receipt, err := n.SendSMS(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(receipt)
		},
	}
	cmd.Flags().StringVar(&req.PhoneNumber, "to", "", "destination phone number in E.164 form")
	cmd.Flags().StringVar(&req.Message, "message", "", "message text")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func (a *app) emailCommand() *cobra.Command {
	var (
		req      notification.EmailRequest
		data     []string
		dataJSON string
	)

	cmd := &cobra.Command{
		Use:   "email",
		Short: "Send a templated email",
		Long: `Send a templated email.

Examples:
  notihub email --template welcome --to ada@example.com --from noreply@example.com --data name=Ada
  notihub email --provider smtp --template welcome --to ada@example.com --data-json '{"name":"Ada"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if req.Data, err = parseData(data, dataJSON); err != nil {
				return err
			}
			n, err := a.notifier(cmd.Context())
			if err != nil {
				return err
			}
			receipt, err := n.SendEmail(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(receipt)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Template, "template", "", "template name")
	f.StringSliceVar(&req.Recipients, "to", nil, "recipient addresses")
	f.StringVar(&req.Sender, "from", "", "sender address (providers with a configured sender may omit it)")
	f.StringVar(&req.Subject, "subject", "", "replaces the template subject")
	f.StringSliceVar(&req.CC, "cc", nil, "cc addresses")
	f.StringSliceVar(&req.BCC, "bcc", nil, "bcc addresses")
	f.StringArrayVar(&data, "data", nil, "template data as key=value, repeatable")
	f.StringVar(&dataJSON, "data-json", "", "template data as a JSON object")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// pushFlags holds the flags shared by push and pinpoint push.
type pushFlags struct {
	req      notification.PushRequest
	data     []string
	dataJSON string
	ttl      int
}

func (p *pushFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVar(&p.req.TargetIDs, "target", nil, "target id (device token, endpoint id, ARN, subscription JSON or service URL), repeatable")
	f.StringVar(&p.req.Title, "title", "", "notification title")
	f.StringVar(&p.req.Body, "body", "", "notification body")
	f.StringVar(&p.req.DeepLinkURL, "deep-link", "", "URL opened when the notification is tapped")
	f.StringVar(&p.req.ImageURL, "image", "", "image URL")
	f.BoolVar(&p.req.Silent, "silent", false, "send a background push with no alert")
	f.StringVar(&p.req.Priority, "priority", "", "provider priority, e.g. high or normal")
	f.IntVar(&p.ttl, "ttl", 0, "time to live in seconds (provider default when unset)")
	f.StringArrayVar(&p.data, "data", nil, "custom data as key=value, repeatable")
	f.StringVar(&p.dataJSON, "data-json", "", "custom data as a JSON object")
}

// request finishes the request from flags that need parsing.
func (p *pushFlags) request(cmd *cobra.Command) (notification.PushRequest, error) {
	req := p.req
	data, err := parseData(p.data, p.dataJSON)
	if err != nil {
		return req, err
	}
	req.CustomData = data
	if cmd.Flags().Changed("ttl") {
		ttl := p.ttl
		req.TimeToLive = &ttl
	}
	return req, nil
}

func (a *app) pushCommand() *cobra.Command {
	var p pushFlags

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send a push notification",
		Long: `Send a push notification through the selected provider.

Examples:
  notihub push --provider fcm --target <token> --title Hi --body "New message"
  notihub push --provider webpush --target "$(cat subscription.json)" --title Hi
  notihub push --provider apns --target <token> --silent --data sync=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := p.request(cmd)
			if err != nil {
				return err
			}
			n, err := a.notifier(cmd.Context())
			if err != nil {
				return err
			}
			receipt, err := n.SendPush(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(receipt)
		},
	}
	p.register(cmd)
	return cmd
}

// parseData merges a JSON object with key=value pairs. Pairs win on
// conflict and their values stay strings.
func parseData(pairs []string, rawJSON string) (map[string]any, error) {
	if len(pairs) == 0 && rawJSON == "" {
		return nil, nil
	}
	data := make(map[string]any, len(pairs))
	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &data); err != nil {
			return nil, fmt.Errorf("--data-json must be a JSON object: %w", err)
		}
		if data == nil {
			data = map[string]any{}
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--data %q must be key=value", pair)
		}
		data[key] = value
	}
	return data, nil
}
