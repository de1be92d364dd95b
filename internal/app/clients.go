package app

import (
	temporalsdkclient "go.temporal.io/sdk/client"

	redisclient "github.com/deebajee2009/OnlineExamBackEnd/internal/clients/redis"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/platform/logger"
	"github.com/deebajee2009/OnlineExamBackEnd/internal/temporalx"
)

type Clients struct {
	OTPStore redisclient.OTPStore
	Temporal temporalsdkclient.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	otpStore, err := redisclient.NewOTPStore(log)
	if err != nil {
		return Clients{}, err
	}

	tc, err := temporalx.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	return Clients{
		OTPStore: otpStore,
		Temporal: tc,
	}, nil
}

func (c Clients) Close() {
	if c.OTPStore != nil {
		_ = c.OTPStore.Close()
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
}
