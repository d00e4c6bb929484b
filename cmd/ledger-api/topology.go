package main

import (
	appbuilder "credential-ledger/pkg/appbuilder"
	"credential-ledger/pkg/rabbitmq"
	"credential-ledger/pkg/utilities"
)

const ledgerExchange = "ledger"

// Queue names double as routing keys on the direct exchange.
var ledgerQueues = []string{
	"oracle.requests",
	"oracle.callbacks",
	"ledger.events",
	"ledger.logs",
}

// declareLedgerTopology declares the exchange and queues both binaries rely
// on. Declarations are idempotent, so the api and the oracle worker can race
// on startup.
func declareLedgerTopology(a *appbuilder.AppBuilder[ApiConfigJson, ApiConfig]) {
	ch, err := a.Conn.Channel()
	utilities.FailOnError(err, "Failed to open a channel for topology setup")
	defer ch.Close()

	err = rabbitmq.CreateNewExchange(ch, ledgerExchange, rabbitmq.ExchangeDirect)
	utilities.FailOnError(err, "Failed to declare the ledger exchange")

	for _, queue := range ledgerQueues {
		_, err = rabbitmq.CreateNewQueue(ch, queue)
		utilities.FailOnError(err, "Failed to declare queue "+queue)

		err = rabbitmq.BindQueueToExchange(ch, queue, queue, ledgerExchange)
		utilities.FailOnError(err, "Failed to bind queue "+queue)
	}

	a.Logger.Info("Declared ledger exchange and queues")
}
