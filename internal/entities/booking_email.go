package entities

// Contact is the optional requester contact info carried on a booking
// request. The engine never sees it; it only feeds notifications.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type BookingEmailData struct {
	RequesterName  string
	BookingID      string
	RoomName       string
	RoomLocation   string
	StartFormatted string
	EndFormatted   string
	Status         string
}
