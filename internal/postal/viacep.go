// Package postal resolves Brazilian postal codes (CEP) into street addresses.
package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"estampa-fina/pkg/validator"
)

var (
	ErrInvalidCEP = errors.New("postal code must have 8 digits")
	ErrNotFound   = errors.New("postal code not found")
)

// Address is the subset of a lookup used to prefill client forms.
type Address struct {
	PostalCode string `json:"postalCode"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
}

// Lookup resolves a postal code.
type Lookup interface {
	Lookup(ctx context.Context, cep string) (*Address, error)
}

type viaCEPClient struct {
	baseURL string
	timeout time.Duration
}

// NewViaCEPClient creates a client for the ViaCEP JSON API rooted at baseURL
// (for example https://viacep.com.br/ws).
func NewViaCEPClient(baseURL string, timeout time.Duration) Lookup {
	return &viaCEPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	// ViaCEP answers unknown codes with 200 and {"erro": true}; older
	// deployments send the string "true".
	Erro any `json:"erro"`
}

func (r *viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func (c *viaCEPClient) Lookup(ctx context.Context, cep string) (*Address, error) {
	digits := validator.DigitsOnly(cep)
	if len(digits) != 8 {
		return nil, ErrInvalidCEP
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Get(fmt.Sprintf("%s/%s/json/", c.baseURL, digits))
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("postal lookup: %w", errors.Join(errs...))
	}

	switch {
	case status == fiber.StatusBadRequest:
		return nil, ErrInvalidCEP
	case status == fiber.StatusNotFound:
		return nil, ErrNotFound
	case status != fiber.StatusOK:
		return nil, fmt.Errorf("postal lookup: unexpected status %d", status)
	}

	var out viaCEPResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding postal response: %w", err)
	}
	if out.notFound() {
		return nil, ErrNotFound
	}

	return &Address{
		PostalCode: digits,
		Street:     out.Logradouro,
		District:   out.Bairro,
		City:       out.Localidade,
		State:      out.UF,
	}, nil
}
