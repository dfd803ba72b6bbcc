package qrgen

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"
)

// payload is what a turnstile scanner reads back from the printed code.
type payload struct {
	TicketID string `json:"ticket_id"`
	HolderID string `json:"holder_id"`
}

// Generate renders the scannable QR code for an issued ticket as a PNG.
func Generate(ticketID, holderID string) ([]byte, error) {
	data, err := json.Marshal(payload{TicketID: ticketID, HolderID: holderID})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
