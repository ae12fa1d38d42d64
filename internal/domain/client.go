package domain

import (
	"context"
	"time"
)

// Client is a counterparty the FOP invoices
type Client struct {
	ID        int32     `json:"id"`
	UserID    int32     `json:"userId"`
	Name      string    `json:"name"`
	Country   *string   `json:"country,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IBAN      *string   `json:"iban,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ClientRepository interface {
	Create(ctx context.Context, client *Client) (*Client, error)
	List(ctx context.Context, userID int32, search string) ([]*Client, error)
}
