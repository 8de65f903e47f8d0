package messenger

import (
	"errors"
	"github.com/ZilDuck/stacks-asset-marketplace/internal/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"go.uber.org/zap"
)

var ErrQueueNotConfigured = errors.New("queue not configured")

type MessageService interface {
	Enabled(item Item) bool
	SendMessage(item Item, body []byte) error
	PollMessages(item Item, messages chan<- *sqs.Message)
	DeleteMessage(item Item, message *sqs.Message) error
}

type Item string

var (
	MarketplaceSale Item = "marketplace.sale"
)

type messenger struct {
	client sqsiface.SQSAPI
	queues map[Item]string
}

func NewMessenger(client sqsiface.SQSAPI, queues map[Item]string) MessageService {
	return messenger{client, queues}
}

// NewSqsMessenger builds an SQS backed messenger from config. Without a
// region or queue url the messenger is returned disabled.
func NewSqsMessenger(cfg config.AwsConfig) (MessageService, error) {
	queues := make(map[Item]string)
	if cfg.SaleQueueUrl != "" {
		queues[MarketplaceSale] = cfg.SaleQueueUrl
	}
	if len(queues) == 0 || cfg.Region == "" {
		zap.L().Info("[Queue] No SQS queues configured")
		return NewMessenger(nil, map[Item]string{}), nil
	}

	awsConfig := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to create AWS session")
		return nil, err
	}

	return NewMessenger(sqs.New(sess), queues), nil
}

func (m messenger) Enabled(item Item) bool {
	_, ok := m.queues[item]
	return ok && m.client != nil
}

func (m messenger) SendMessage(item Item, body []byte) error {
	queueUrl, ok := m.queues[item]
	if !ok || m.client == nil {
		return ErrQueueNotConfigured
	}

	out, err := m.client.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    aws.String(queueUrl),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"item": {DataType: aws.String("String"), StringValue: aws.String(string(item))},
		},
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("[Queue] Failed to send message")
		return err
	}

	zap.L().With(zap.String("queue", string(item)), zap.String("messageId", aws.StringValue(out.MessageId))).Info("[Queue] Published message")

	return nil
}

// PollMessages long-polls the queue and forwards every message until a
// receive fails.
func (m messenger) PollMessages(item Item, messages chan<- *sqs.Message) {
	defer close(messages)

	queueUrl, ok := m.queues[item]
	if !ok || m.client == nil {
		zap.L().With(zap.String("queue", string(item))).Error("[Queue] Cannot poll unconfigured queue")
		return
	}

	for {
		out, err := m.client.ReceiveMessage(&sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(queueUrl),
			MaxNumberOfMessages: aws.Int64(10),
			WaitTimeSeconds:     aws.Int64(20),
		})
		if err != nil {
			zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("[Queue] Failed to receive messages")
			return
		}

		for _, message := range out.Messages {
			messages <- message
		}
	}
}

func (m messenger) DeleteMessage(item Item, message *sqs.Message) error {
	queueUrl, ok := m.queues[item]
	if !ok || m.client == nil {
		return ErrQueueNotConfigured
	}

	_, err := m.client.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueUrl),
		ReceiptHandle: message.ReceiptHandle,
	})

	return err
}
