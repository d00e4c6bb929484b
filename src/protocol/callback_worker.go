package protocol

import (
	"encoding/json"

	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/src/oracle"

	amqp "github.com/rabbitmq/amqp091-go"
)

const callbackWorkerName = "OracleCallbackWorker"

// CallbackWorker consumes the oracle's callback queue and feeds each
// decryption result into the protocol service. Rejected callbacks are logged
// and dropped; the oracle does not retry.
type CallbackWorker struct {
	consumer rabbitmq.IRabbitmqConsumer
	service  *Service
}

func NewCallbackWorker(consumer rabbitmq.IRabbitmqConsumer, service *Service) rabbitmq.WorkerService {
	return &CallbackWorker{
		consumer: consumer,
		service:  service,
	}
}

func (cw *CallbackWorker) GetServiceName() string {
	return callbackWorkerName
}

func (cw *CallbackWorker) StartService() {
	cw.consumer.StartConsuming(cw.handleMessage)
}

func (cw *CallbackWorker) handleMessage(d amqp.Delivery) {
	workerLogger := logger.Default()

	var result oracle.DecryptionResultDto
	if err := json.Unmarshal(d.Body, &result); err != nil {
		workerLogger.Error(err, "Could not unmarshal decryption result")
		return
	}

	if err := cw.service.HandleDecryptionResult(result); err != nil {
		workerLogger.Errorf(err, "Rejected oracle callback for request %s", result.RequestId)
	}
}
