package main

import (
	"os"

	appbuilder "credential-ledger/pkg/appbuilder"
	"credential-ledger/pkg/events"
	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/pkg/rest"
	"credential-ledger/src/aggregation"
	"credential-ledger/src/credential"
	"credential-ledger/src/database"
	"credential-ledger/src/encops"
	"credential-ledger/src/model"
	"credential-ledger/src/oracle"
	"credential-ledger/src/outbox"
	"credential-ledger/src/protocol"
)

// @title           Credential Ledger API
// @version         1.0
// @description     Encrypted-credential ledger with oracle-assisted aggregation and selective reveal
// @host localhost:9000
// @BasePath /v1
func main() {

	var credentialHandler *credential.Handler
	var protocolHandler *protocol.Handler
	var protocolService *protocol.Service

	appbuilder.New[ApiConfigJson, ApiConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{
				{Key: "application", Value: "ledger-api"},
				{Key: "version", Value: "1.0.0"},
			},
		}).
		ResolveEnvironment().
		LoadConfig("config.json").
		WithOption(func(a *appbuilder.AppBuilder[ApiConfigJson, ApiConfig]) {
			// ----- DATABASE + MIGRATIONS -----
			database.InitializeDatabaseConnection(a.Config.GetDatabaseConnectionString())
			database.RunMigrations()
		}).

		// ----- RABBITMQ -----
		InitRabbitmqConnection().
		WithOption(declareLedgerTopology).
		InitRabbitmqRegistries().
		WithOption(func(a *appbuilder.AppBuilder[ApiConfigJson, ApiConfig]) {
			// ----- RABBITMQ LOGGING SINK -----
			logPublisher := rabbitmq.GetPublisher("LogPublisher")
			logSink := rabbitmq.CreateRabbitmqLoggerSink(logPublisher)
			logger.AddSinkToLoggerInstance(logger.Default(), logSink)

			// ----- PROTOCOL WIRING -----
			oracleConf := a.Config.GetOracleConfig()

			scheme, err := encops.NewSealedScheme(oracleConf.SchemeKey)
			if err != nil {
				a.Logger.Fatal(err, "Cannot initialize encrypted operand scheme")
			}

			attestor, err := buildAttestor(oracleConf)
			if err != nil {
				a.Logger.Fatal(err, "Cannot initialize callback attestor")
			}

			db := database.GetDatabaseConnection()
			bus := events.NewBus()
			attachEventLogging(bus, a.Logger)
			oracleClient := oracle.NewAmqpClient(rabbitmq.GetPublisher("OracleRequestsPublisher"))

			protocolService = protocol.NewService(db, oracleClient, attestor, aggregation.NewEngine(scheme), bus)
			protocolHandler = protocol.NewHandler(protocolService)
			credentialHandler = credential.NewHandler(credential.NewService(db, bus))
		}).

		// ----- WORKERS -----
		AddWorkerServices(
			protocol.NewCallbackWorker(rabbitmq.GetConsumer("OracleCallbacksConsumer"), protocolService),
			outbox.NewOutboxWorker(rabbitmq.GetPublisher("LedgerEventsPublisher"), outbox.NewRepo(database.GetDatabaseConnection())),
		).
		AddGinMiddleware(
			rest.NewMiddleware("*", rest.CORSMiddleware()),
			rest.NewMiddleware("v1/internal", rest.InternalAuthMiddleware()),
		).

		// ----- ROUTES -----
		AddGinRoutes(
			rest.NewRoute(rest.POST, "v1", "holders/:holder_id/credentials", credentialHandler.AddCredential),
			rest.NewRoute(rest.GET, "v1", "holders/:holder_id/credentials/count", credentialHandler.GetCredentialCount),

			rest.NewRoute(rest.POST, "v1", "holders/:holder_id/proof-requests", protocolHandler.RequestProofGeneration),
			rest.NewRoute(rest.POST, "v1", "holders/:holder_id/reveal-requests", protocolHandler.RequestReveal),
			rest.NewRoute(rest.GET, "v1", "holders/:holder_id/status", protocolHandler.GetHolderStatus),

			// oracle callback over HTTP, for deployments without queue access
			rest.NewRoute(rest.POST, "v1/internal", "oracle/callback", protocolHandler.HandleOracleCallback),
		).
		AddSwagger().
		InitGinRouter().
		Build().
		Start()
}

// attachEventLogging mirrors the domain event feed into the api log. The
// outward-facing feed goes through the outbox; this is for operators tailing
// the process.
func attachEventLogging(bus *events.Bus, appLogger *logger.Logger) {
	logEvent := func(name string) interface{} {
		return func(payload interface{}) {
			appLogger.Infof("Domain event %s: %+v", name, payload)
		}
	}

	for _, name := range []string{
		model.EventCredentialAdded,
		model.EventProofGenerationRequested,
		model.EventProofGenerated,
		model.EventProofRevealed,
	} {
		if err := bus.Subscribe(name, logEvent(name)); err != nil {
			appLogger.Errorf(err, "Could not subscribe to %s events", name)
		}
	}
}

// buildAttestor picks the callback verification scheme from config. hmac is
// the default; groth16 verifies a decryption proof against the key at
// verifying_key_path.
func buildAttestor(conf OracleConfig) (oracle.Attestor, error) {
	switch conf.AttestationScheme {
	case oracle.SchemeGroth16:
		vkBytes, err := os.ReadFile(conf.VerifyingKeyPath)
		if err != nil {
			return nil, err
		}
		return oracle.NewGroth16Attestor(vkBytes)
	default:
		return oracle.NewHmacAttestor([]byte(conf.HmacSecret)), nil
	}
}
