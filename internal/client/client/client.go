package client

import (
	"context"

	"github.com/dmitrijs2005/ridegate/internal/client/models"
)

// Client is the part of the REST API the session layer depends on.
type Client interface {
	ObtainToken(ctx context.Context, username, password string) (models.TokenPair, error)
	RegisterDriver(ctx context.Context, data models.DriverRegistration) error
	RegisterPassenger(ctx context.Context, data models.PassengerRegistration) error
}

// API paths, relative to the configured base URL.
const (
	PathObtainToken       = "/auth/token/"
	PathRegisterDriver    = "/driver/register/"
	PathRegisterPassenger = "/passenger/register/"
)
