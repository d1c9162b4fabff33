package models

import "time"

// PaymentIntent mirrors a provider-side payment intent.
type PaymentIntent struct {
	ID            string `json:"id"`
	OrderID       string `json:"order_id"`
	AmountNUC     int64  `json:"amount_nuc"`
	Currency      string `json:"currency"`
	Status        PaymentStatus `json:"status"`
	ClientSecret  string `json:"client_secret,omitempty"`
	Reference     string `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
