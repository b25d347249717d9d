package model

// CreateReservationRequest carries the dialog fields. Name and passphrase are
// free text with no length rule of their own; the request body cap bounds them.
type CreateReservationRequest struct {
	Date       string `json:"date" validate:"required,slot_date"`
	Time       string `json:"time" validate:"required,slot_time"`
	Name       string `json:"name"`
	Passphrase string `json:"passphrase"`
}

type CancelReservationRequest struct {
	Passphrase string `json:"passphrase"`
}

type AdminLoginRequest struct {
	Secret string `json:"secret" validate:"required,max=200"`
}

type AdminToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type SlotReservation struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Name string `json:"name"`
}
