/**
 * @description
 * This file contains the event handler that provisions accounts from
 * holder_created messages. Delivery is at-least-once, so the handler is
 * idempotent on the holder CPF: only the first successful provisioning has
 * any effect, and every later delivery is acknowledged as a no-op.
 */
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/xinton/desafio-dev-api-rest/internal/accounts/domain"
)

// handlerTimeout bounds one provisioning attempt; a slow store nacks the
// message and the broker redelivers.
const handlerTimeout = 30 * time.Second

// AccountEventHandler processes account provisioning events.
type AccountEventHandler struct {
	service *Service
}

// NewAccountEventHandler creates a new instance of AccountEventHandler.
func NewAccountEventHandler(service *Service) *AccountEventHandler {
	return &AccountEventHandler{service: service}
}

// HandleHolderCreatedEvent provisions an account for a freshly registered
// holder. Returns true to ack the message, false to nack and let the broker
// redeliver. Malformed payloads are acked so they never loop.
func (h *AccountEventHandler) HandleHolderCreatedEvent(body []byte) bool {
	var event domain.HolderCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Error unmarshaling holder_created event: %v", err)
		return true // Acknowledge malformed message.
	}
	if event.CPF == "" {
		log.Printf("holder_created event missing cpf; acking")
		return true
	}

	log.Printf("Processing holder_created event for CPF %s", event.CPF)
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	account, err := h.service.ProvisionAccount(ctx, event.CPF)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			log.Printf("INFO: holder %s already provisioned; acking", event.CPF)
			return true
		}
		log.Printf("ERROR: failed to provision account for holder %s: %v", event.CPF, err)
		return false // Transient store failure; requeue for redelivery.
	}

	log.Printf("Provisioned account %s for holder %s", account.ID, event.CPF)
	return true
}
