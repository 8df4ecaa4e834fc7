package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/tinywideclouds/go-notihub/pkg/platform/amazon"
)

func (a *app) pinpointCommand() *cobra.Command {
	var appID string

	cmd := &cobra.Command{
		Use:   "pinpoint",
		Short: "Pinpoint push and endpoint lookups",
	}
	cmd.PersistentFlags().StringVar(&appID, "app-id", "", "Pinpoint application id (defaults to aws.pinpoint_application_id)")

	resolveAppID := func() (string, error) {
		if appID != "" {
			return appID, nil
		}
		if a.cfg.AWS.PinpointApplicationID != "" {
			return a.cfg.AWS.PinpointApplicationID, nil
		}
		return "", errors.New("a Pinpoint application id is required: pass --app-id or set PINPOINT_APPLICATION_ID")
	}

	var p pushFlags
	push := &cobra.Command{
		Use:   "push",
		Short: "Send a push to Pinpoint endpoint ids",
		Args:  cobra.NoArgs,
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, _ []string) (any, error) {
			id, err := resolveAppID()
			if err != nil {
				return nil, err
			}
			req, err := p.request(cmd)
			if err != nil {
				return nil, err
			}
			return n.SendPinpointPush(cmd.Context(), id, req)
		}),
	}
	p.register(push)

	endpoint := &cobra.Command{
		Use:   "endpoint <endpoint-id>",
		Short: "Look up one endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			id, err := resolveAppID()
			if err != nil {
				return nil, err
			}
			return n.GetEndpoint(cmd.Context(), id, args[0])
		}),
	}

	userEndpoints := &cobra.Command{
		Use:   "user-endpoints <user-id>",
		Short: "Look up every endpoint registered to a user",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			id, err := resolveAppID()
			if err != nil {
				return nil, err
			}
			return n.GetUserEndpoints(cmd.Context(), id, args[0])
		}),
	}

	cmd.AddCommand(push, endpoint, userEndpoints)
	return cmd
}

func (a *app) topicCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage and publish to SNS topics",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a topic, or return the existing one",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.CreateTopic(cmd.Context(), args[0])
		}),
	}

	get := &cobra.Command{
		Use:   "get <topic-arn>",
		Short: "Show topic attributes",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.GetTopic(cmd.Context(), args[0])
		}),
	}

	del := &cobra.Command{
		Use:   "delete <topic-arn>",
		Short: "Delete a topic",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.DeleteTopic(cmd.Context(), args[0])
		}),
	}

	var protocol, endpoint string
	subscribe := &cobra.Command{
		Use:   "subscribe <topic-arn>",
		Short: "Subscribe an endpoint to a topic",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.SubscribeToTopic(cmd.Context(), args[0], protocol, endpoint)
		}),
	}
	subscribe.Flags().StringVar(&protocol, "protocol", "", "sns protocol such as email, sms, https or application")
	subscribe.Flags().StringVar(&endpoint, "endpoint", "", "address, number, URL or ARN for the protocol")
	_ = subscribe.MarkFlagRequired("protocol")
	_ = subscribe.MarkFlagRequired("endpoint")

	var message, subject string
	publish := &cobra.Command{
		Use:   "publish <topic-arn>",
		Short: "Publish a message to every subscriber",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.SendTopicNotification(cmd.Context(), args[0], message, subject)
		}),
	}
	publish.Flags().StringVar(&message, "message", "", "message text")
	publish.Flags().StringVar(&subject, "subject", "", "subject for email subscribers")
	_ = publish.MarkFlagRequired("message")

	cmd.AddCommand(create, get, del, subscribe, publish)
	return cmd
}

func (a *app) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage SES email templates",
	}

	// create and update share the template body flags.
	withBody := func(c *cobra.Command, t *amazon.EmailTemplate) *cobra.Command {
		c.Flags().StringVar(&t.Subject, "subject", "", "subject line")
		c.Flags().StringVar(&t.Text, "text", "", "plain text part")
		c.Flags().StringVar(&t.HTML, "html", "", "html part")
		return c
	}

	var created amazon.EmailTemplate
	create := withBody(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a template",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			created.Name = args[0]
			return n.CreateEmailTemplate(cmd.Context(), created)
		}),
	}, &created)

	var updated amazon.EmailTemplate
	update := withBody(&cobra.Command{
		Use:   "update <name>",
		Short: "Replace a template",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			updated.Name = args[0]
			return n.UpdateEmailTemplate(cmd.Context(), updated)
		}),
	}, &updated)

	get := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a template",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.GetEmailTemplate(cmd.Context(), args[0])
		}),
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error) {
			return n.DeleteEmailTemplate(cmd.Context(), args[0])
		}),
	}

	var nextToken string
	list := &cobra.Command{
		Use:   "list",
		Short: "List templates, one page at a time",
		Args:  cobra.NoArgs,
		RunE: a.withAWS(func(cmd *cobra.Command, n *amazon.Notifier, _ []string) (any, error) {
			return n.ListEmailTemplates(cmd.Context(), nextToken)
		}),
	}
	list.Flags().StringVar(&nextToken, "next-token", "", "token from the previous page")

	cmd.AddCommand(create, update, get, del, list)
	return cmd
}

// withAWS runs body against the AWS notifier and prints what it returns.
func (a *app) withAWS(body func(cmd *cobra.Command, n *amazon.Notifier, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		n, err := a.awsNotifier(cmd.Context())
		if err != nil {
			return err
		}
		out, err := body(cmd, n, args)
		if err != nil {
			return err
		}
		return a.print(out)
	}
}
