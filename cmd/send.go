// Package cmd — send command.
// Cleans one export and mails it as a preview through AWS SES.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/mailscrub/config"
	"github.com/gaurav-prasanna/mailscrub/core"
	"github.com/gaurav-prasanna/mailscrub/core/batch"
	"github.com/gaurav-prasanna/mailscrub/core/extract"
	"github.com/gaurav-prasanna/mailscrub/core/fetch"
	"github.com/gaurav-prasanna/mailscrub/core/normalize"
	"github.com/gaurav-prasanna/mailscrub/core/pipeline"
	"github.com/gaurav-prasanna/mailscrub/core/send"
)

var (
	flagSendTo      []string
	flagSendSubject string
	flagSendFrom    string
	flagSendRegion  string
	flagSendConfig  string
)

var sendCmd = &cobra.Command{
	Use:   "send <input>",
	Short: "Clean an export and send it as a preview via AWS SES",
	Long: `Send cleans one input with the configured pipeline and delivers the result,
with its plain-text alternative, to the given recipients. The subject defaults
to the document title.

Examples:
  mailscrub send campaign.html --to qa@example.com --from preview@example.com
  mailscrub send campaign.html --to a@example.com --to b@example.com --config mailscrub.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringSliceVar(&flagSendTo, "to", nil, "Recipient address (repeatable)")
	sendCmd.Flags().StringVar(&flagSendSubject, "subject", "", "Subject line (default: document title)")
	sendCmd.Flags().StringVar(&flagSendFrom, "from", "", "Verified SES sender address (overrides send.sender)")
	sendCmd.Flags().StringVar(&flagSendRegion, "region", "", "AWS region (overrides send.region)")
	sendCmd.Flags().StringVar(&flagSendConfig, "config", "", "YAML configuration file")
	_ = sendCmd.MarkFlagRequired("to")
}

// previewSender is the part of send.SESSender the command needs.
type previewSender interface {
	Send(ctx context.Context, msg send.Message) (string, error)
}

// newSender is replaced in tests.
var newSender = func(ctx context.Context, cfg send.Config, log *zap.Logger) (previewSender, error) {
	s, err := send.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfiguration(flagSendConfig)
	if err != nil {
		return err
	}
	if flagSendFrom != "" {
		cfg.Send.Sender = flagSendFrom
	}
	if flagSendRegion != "" {
		cfg.Send.Region = flagSendRegion
	}

	log, err := cfg.Logging.Prepare()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	src, err := batch.Read(ctx, fetch.New(log), args[0])
	if err != nil {
		return err
	}
	res, err := pipeline.NewWithClassifier(classifier, log).Clean(src, cfg.Pipeline)
	if err != nil {
		return fmt.Errorf("cleaning %s: %w", args[0], err)
	}

	msg, err := previewMessage(res.HTML, normalize.New())
	if err != nil {
		return err
	}
	msg.To = flagSendTo
	if flagSendSubject != "" {
		msg.Subject = flagSendSubject
	}

	sender, err := newSender(ctx, cfg.Send, log)
	if err != nil {
		return fmt.Errorf("initializing SES: %w", err)
	}
	id, err := sender.Send(ctx, msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Sent: %s (message id %s)\n", args[0], id)
	return nil
}

func previewMessage(cleaned string, n core.Normalizer) (send.Message, error) {
	title, text, err := batch.PlainText(extract.New(), n, cleaned)
	if err != nil {
		return send.Message{}, fmt.Errorf("text alternative: %w", err)
	}
	if title == "" {
		title = "mailscrub preview"
	}
	return send.Message{Subject: title, HTML: cleaned, Text: text}, nil
}
