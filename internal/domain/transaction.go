package domain

import "time"

// Direction classifies a transaction's cash-flow sign.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
	DirectionUnknown Direction = "unknown"
)

// Transaction holds the raw fields of one statement row.
// Debit and Credit are absolute values; Amount carries the sign
// (credit minus debit). Balance is nil when the column was empty.
type Transaction struct {
	BankDetails    string    `json:"bankDetails,omitempty"`
	AccountNumber  string    `json:"accountNumber"`
	PostDate       time.Time `json:"postDate"`
	Check          string    `json:"check,omitempty"`
	Description    string    `json:"description"`
	Status         string    `json:"status,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Category       string    `json:"category,omitempty"`
	Event          string    `json:"event,omitempty"`
	EventDetails   string    `json:"eventDetails,omitempty"`
	Debit          float64   `json:"debit,omitempty"`
	Credit         float64   `json:"credit,omitempty"`
	Amount         float64   `json:"amount"`
	Balance        *float64  `json:"balance,omitempty"`
}

// ClassifiedTransaction is a Transaction plus its direction tag.
// The direction is derived once at parse time and never recomputed.
type ClassifiedTransaction struct {
	Transaction
	Direction Direction `json:"direction"`
}
