package oracle

import (
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/src/model"
)

// Client is the ledger-side face of the decryption oracle. The caller mints
// the request id (unique for the lifetime of the deployment, never reused)
// and the oracle echoes it back in its callback.
type Client interface {
	RequestDecryption(requestId string, handles [][]byte, kind model.RequestKind) error
}

// AmqpClient submits decryption requests over the oracle request queue.
type AmqpClient struct {
	publisher rabbitmq.IRabbitmqPublisher
}

func NewAmqpClient(publisher rabbitmq.IRabbitmqPublisher) *AmqpClient {
	return &AmqpClient{publisher: publisher}
}

func (c *AmqpClient) RequestDecryption(requestId string, handles [][]byte, kind model.RequestKind) error {
	return c.publisher.Publish(DecryptionRequestDto{
		RequestId: requestId,
		Kind:      kind,
		Handles:   handles,
	})
}
