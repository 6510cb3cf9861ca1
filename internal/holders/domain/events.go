package domain

// HolderCreatedEvent is published after a holder is persisted so the
// account-service provisions an account for them.
type HolderCreatedEvent struct {
	CPF  string `json:"cpf"`
	Name string `json:"name,omitempty"`
}
