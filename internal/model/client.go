package model

import (
	"time"

	"github.com/google/uuid"

	"estampa-fina/internal/tier"
)

// Address is stored inline on the owning row.
type Address struct {
	Street     string `gorm:"type:varchar(255)" json:"street"`
	Number     string `gorm:"type:varchar(20)" json:"number"`
	Complement string `gorm:"type:varchar(255)" json:"complement"`
	District   string `gorm:"type:varchar(120)" json:"district"`
	City       string `gorm:"type:varchar(120)" json:"city"`
	State      string `gorm:"type:varchar(2)" json:"state"`
	PostalCode string `gorm:"type:varchar(9)" json:"postalCode" validate:"omitempty,cep"`
}

// Client is a customer record kept by the back office.
type Client struct {
	BaseModel
	Name    string  `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Email   string  `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Phone   string  `gorm:"type:varchar(30)" json:"phone"`
	CPF     string  `gorm:"column:cpf;type:varchar(14);index" json:"cpf"`
	Address Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Notes   string  `gorm:"type:text" json:"notes"`
}

// ClientResponse carries the derived tier next to the stored record.
type ClientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	CPF             string    `json:"cpf"`
	Address         Address   `json:"address"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	CompletedOrders int       `json:"completedOrders"`
	Status          tier.Tier `json:"status"`
}

// ToResponse classifies the client at now given its completed order count.
func (c *Client) ToResponse(completedOrders int, now time.Time) ClientResponse {
	return ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		CPF:             c.CPF,
		Address:         c.Address,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		CompletedOrders: completedOrders,
		Status:          tier.Classify(c.CreatedAt, completedOrders, now),
	}
}
