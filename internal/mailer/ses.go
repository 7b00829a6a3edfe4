package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/types"
)

// sesAPI is the part of the SES client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewSES returns a Sender backed by Amazon SES. Credentials come from the
// default AWS chain.
func NewSES(ctx context.Context, cfg config.SESConfig, log *zap.Logger) (Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(ses.NewFromConfig(awsCfg), log), nil
}

func newSESSender(client sesAPI, log *zap.Logger) Sender {
	return func(ctx context.Context, n types.Notification) error {
		out, err := client.SendEmail(ctx, &ses.SendEmailInput{
			Source: aws.String(n.From),
			Destination: &sestypes.Destination{
				ToAddresses: []string{n.To},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(n.Subject), Charset: aws.String("UTF-8")},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(n.HTML), Charset: aws.String("UTF-8")},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("ses send: %w", err)
		}
		log.Info("email sent", zap.String("to", n.To), zap.String("message_id", aws.ToString(out.MessageId)))
		return nil
	}
}
