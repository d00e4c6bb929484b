package main

import (
	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/pkg/utilities"
	"credential-ledger/src/encops"
	"credential-ledger/src/oracle"
	"credential-ledger/src/oracled"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

const ledgerExchange = "ledger"

var ledgerQueues = []string{
	"oracle.requests",
	"oracle.callbacks",
}

func main() {
	// Initialize logger
	logger.InitDefaultLogger(logger.GlobalLoggerConfig{
		Args: []logger.LoggerArg{
			{Key: "application", Value: "oracle-worker"},
			{Key: "version", Value: "1.0.0"},
		},
	})

	mainLogger := logger.Default()

	if err := godotenv.Load(); err != nil {
		mainLogger.Debug("No .env file found, using process environment")
	}

	config, err := utilities.ReadConfig[WorkerConfigJson, WorkerConfig]("config.json")
	utilities.FailOnError(err, "Failed to load config")

	// The worker is the only process holding decryption capability.
	scheme, err := encops.NewSealedScheme(config.OracleConf.SchemeKey)
	utilities.FailOnError(err, "Failed to initialize the sealed operand scheme")

	attestor := oracle.NewHmacAttestor([]byte(config.OracleConf.HmacSecret))
	service := oracled.NewService(scheme, attestor)

	// 1. Connect to RabbitMQ
	conn, err := rabbitmq.ConnectToRabbitmq(
		config.RabbitmqConf.User,
		config.RabbitmqConf.Password,
		config.RabbitmqConf.Host,
	)
	utilities.FailOnError(err, "Failed to connect to RabbitMQ after retries")
	defer conn.Close()

	// 2. Declare exchange and queues, and bind
	err = declareOracleQueues(conn)
	utilities.FailOnError(err, "Failed to setup exchange/queues")

	// 3. Publisher and consumer registries
	rabbitmq.InitializeConsumerRegistry(conn, config.RabbitmqConf.ConsumersConfig)
	rabbitmq.InitializePublisherRegistry(conn, config.RabbitmqConf.PublishersConfig)

	// 4. Start answering decryption requests
	worker := oracled.NewRequestWorker(
		rabbitmq.GetConsumer("OracleRequestsConsumer"),
		rabbitmq.GetPublisher("OracleCallbacksPublisher"),
		service,
	)
	go worker.StartService()

	mainLogger.Info("Oracle worker started and listening for decryption requests")

	// 5. Keep alive
	select {}
}

func declareOracleQueues(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := rabbitmq.CreateNewExchange(ch, ledgerExchange, rabbitmq.ExchangeDirect); err != nil {
		return err
	}

	for _, queue := range ledgerQueues {
		if _, err := rabbitmq.CreateNewQueue(ch, queue); err != nil {
			return err
		}
		if err := rabbitmq.BindQueueToExchange(ch, queue, queue, ledgerExchange); err != nil {
			return err
		}
	}
	return nil
}
