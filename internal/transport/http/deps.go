package http

import (
	"github.com/go-pots-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-pots-api/internal/infrastructure/jwt"
	s3infra "github.com/go-pots-api/internal/infrastructure/s3"
	"github.com/go-pots-api/internal/infrastructure/smtp"
	"github.com/go-pots-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo        *dynamo.UserRepo
	PotRepo         *dynamo.PotRepo
	TransactionRepo *dynamo.TransactionRepo
	TicketRepo      *dynamo.TicketRepo
	// Store commits multi-document writes (pot moves, transfers) atomically.
	Store       *dynamo.Store
	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	SMSSender   sns.SMSSender
	JWTProvider *jwtinfra.Provider
}
