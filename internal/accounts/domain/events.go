package domain

// HolderCreatedEvent is the payload published by the holder-service whenever
// a new holder is persisted. The CPF is the idempotency key for account
// provisioning; the remaining fields are informational.
type HolderCreatedEvent struct {
	CPF  string `json:"cpf"`
	Name string `json:"name,omitempty"`
}
