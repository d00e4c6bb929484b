package oracled

import (
	"encoding/json"

	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/src/oracle"

	amqp "github.com/rabbitmq/amqp091-go"
)

const requestWorkerName = "OracleRequestWorker"

// RequestWorker consumes the request queue and answers each batch on the
// callback queue. Undecryptable batches are logged and dropped; the ledger's
// pending request stays open and can be retried with a fresh request.
type RequestWorker struct {
	consumer  rabbitmq.IRabbitmqConsumer
	publisher rabbitmq.IRabbitmqPublisher
	service   *Service
}

func NewRequestWorker(consumer rabbitmq.IRabbitmqConsumer, publisher rabbitmq.IRabbitmqPublisher, service *Service) rabbitmq.WorkerService {
	return &RequestWorker{
		consumer:  consumer,
		publisher: publisher,
		service:   service,
	}
}

func (rw *RequestWorker) GetServiceName() string {
	return requestWorkerName
}

func (rw *RequestWorker) StartService() {
	rw.consumer.StartConsuming(rw.handleMessage)
}

func (rw *RequestWorker) handleMessage(d amqp.Delivery) {
	workerLogger := logger.Default()

	var req oracle.DecryptionRequestDto
	if err := json.Unmarshal(d.Body, &req); err != nil {
		workerLogger.Error(err, "Could not unmarshal decryption request")
		return
	}

	result, err := rw.service.Fulfill(req)
	if err != nil {
		workerLogger.Errorf(err, "Could not fulfill decryption request %s", req.RequestId)
		return
	}

	if err := rw.publisher.Publish(result); err != nil {
		workerLogger.Errorf(err, "Could not publish decryption result %s", req.RequestId)
		return
	}

	workerLogger.Infof("Answered %s decryption request %s (%d handles)", req.Kind, req.RequestId, len(req.Handles))
}
