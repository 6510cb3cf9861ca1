/**
 * @description
 * Domain model for an account holder. A holder is identified by CPF, the
 * Brazilian natural-person registry number, validated here with its two
 * check digits before anything is persisted.
 */
package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidCPF is returned when a CPF fails structural or check-digit
// validation.
var ErrInvalidCPF = errors.New("invalid CPF")

// Holder is a registered account holder.
type Holder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewHolder validates the CPF and returns a holder ready to persist. The CPF
// is stored in its normalized 11-digit form.
func NewHolder(name, cpf string) (*Holder, error) {
	normalized := NormalizeCPF(cpf)
	if !ValidCPF(normalized) {
		return nil, ErrInvalidCPF
	}
	return &Holder{Name: name, CPF: normalized}, nil
}

// NormalizeCPF strips the usual CPF formatting (dots and dash).
func NormalizeCPF(cpf string) string {
	replacer := strings.NewReplacer(".", "", "-", "", " ", "")
	return replacer.Replace(cpf)
}

// ValidCPF reports whether cpf is a structurally valid CPF: 11 digits, not a
// single repeated digit, with both check digits correct.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	digits := make([]int, 11)
	repeated := true
	for i, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
		if digits[i] != digits[0] {
			repeated = false
		}
	}
	if repeated {
		return false
	}
	return digits[9] == cpfCheckDigit(digits, 9) && digits[10] == cpfCheckDigit(digits, 10)
}

// cpfCheckDigit computes the check digit at position pos (9 or 10) from the
// preceding digits.
func cpfCheckDigit(digits []int, pos int) int {
	sum := 0
	for i := 0; i < pos; i++ {
		sum += digits[i] * (pos + 1 - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
