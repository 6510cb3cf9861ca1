/**
 * @description
 * Application service of the holder-service: holder registration, lookup and
 * removal. Registration persists the holder and enqueues its holder_created
 * event in one transaction; the outbox dispatcher takes it from there.
 */
package app

import (
	"context"
	"log"

	"github.com/xinton/desafio-dev-api-rest/internal/holders/domain"
	"github.com/xinton/desafio-dev-api-rest/internal/holders/store"
)

const (
	// HolderEventsExchange is the durable topic exchange for holder events.
	HolderEventsExchange = "holder_events"
	// HolderCreatedRoutingKey is the routing key of holder_created events.
	HolderCreatedRoutingKey = "holder_created"
)

// Service orchestrates holder registration and lookup.
type Service struct {
	repo store.HolderRepository
}

// NewService creates the holder application service.
func NewService(repo store.HolderRepository) *Service {
	return &Service{repo: repo}
}

// Create validates and registers a holder. The holder_created event is
// enqueued atomically with the insert, so account provisioning is guaranteed
// to eventually follow every successful registration.
func (s *Service) Create(ctx context.Context, name, cpf string) (*domain.Holder, error) {
	holder, err := domain.NewHolder(name, cpf)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateHolderAndEnqueueCreatedEvent(ctx, holder, HolderEventsExchange, HolderCreatedRoutingKey)
	if err != nil {
		return nil, err
	}
	log.Printf("Holder %s registered with CPF %s", created.ID, created.CPF)
	return created, nil
}

// Get returns one holder by CPF.
func (s *Service) Get(ctx context.Context, cpf string) (*domain.Holder, error) {
	return s.repo.GetByCPF(ctx, domain.NormalizeCPF(cpf))
}

// Remove deletes a holder by CPF.
func (s *Service) Remove(ctx context.Context, cpf string) (*domain.Holder, error) {
	return s.repo.Delete(ctx, domain.NormalizeCPF(cpf))
}
