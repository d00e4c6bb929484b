package rabbitmq

// WorkerService is a long-running background service started by the
// application runtime alongside the REST API.
type WorkerService interface {
	GetServiceName() string
	StartService()
}
