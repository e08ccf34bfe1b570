package domain

import (
	"github.com/shopspring/decimal"
)

// MailMessage is the envelope published to the notification queue. To holds
// an email address for mail types and a phone number for WhatsApp types.
type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type AccountApprovedMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

type AccountRejectedMailData struct {
	FullName string `json:"fullName"`
	Reason   string `json:"reason"`
}

type PayoutProcessedData struct {
	FullName string          `json:"fullName"`
	IMEI     string          `json:"imei"`
	Amount   decimal.Decimal `json:"amount"`
}
