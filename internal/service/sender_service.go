package service

import (
	"fmt"
	"log"
	"os"
	"time"

	"campusrooms/internal/booking"
	"campusrooms/internal/entities"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func campusLocation() *time.Location {
	name := os.Getenv("CAMPUS_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("WARNING: unknown CAMPUS_TIMEZONE %q, falling back to UTC", name)
		return time.UTC
	}
	return loc
}

// SendBookingEmail mails the requester about a booking status change. Sending
// happens asynchronously; a delivery failure never fails the booking itself.
func (s *SenderService) SendBookingEmail(b *booking.Booking, room *booking.Room, contact entities.Contact, status string) {
	if contact.Email == "" {
		return
	}
	loc := campusLocation()

	data := entities.BookingEmailData{
		RequesterName:  contact.Name,
		BookingID:      b.ID,
		RoomName:       room.Name,
		RoomLocation:   room.Location,
		StartFormatted: b.Interval.Start.In(loc).Format("02 Jan 2006 15:04 MST"),
		EndFormatted:   b.Interval.End.In(loc).Format("02 Jan 2006 15:04 MST"),
		Status:         status,
	}

	subject := fmt.Sprintf("Your CampusRooms booking is %s - %s", status, data.RoomName)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour room booking is %s.\n\n"+
			"Booking Details:\n"+
			"Booking ID: %s\n"+
			"Room: %s (%s)\n"+
			"From: %s\n"+
			"To: %s\n\n"+
			"Thank you for using CampusRooms.",
		data.RequesterName, status, data.BookingID, data.RoomName, data.RoomLocation,
		data.StartFormatted, data.EndFormatted,
	)

	go func(toEmail, toName, subject, body string) {
		if err := SendEmailWithSendGrid(toEmail, toName, subject, body, body); err != nil {
			log.Printf("ALERT (async): email for booking %s failed: %v", data.BookingID, err)
		}
	}(contact.Email, contact.Name, subject, plainTextBody)
}

// SendBookingSMS texts the requester about a booking status change.
func (s *SenderService) SendBookingSMS(b *booking.Booking, room *booking.Room, contact entities.Contact, status string) {
	if contact.Phone == "" {
		return
	}
	loc := campusLocation()

	message := fmt.Sprintf("CampusRooms: your booking for %s is %s.\nStarts: %s.\nMore details in your email.",
		room.Name, status,
		b.Interval.Start.In(loc).Format("02/01 15:04"),
	)

	go func(phone, message string) {
		if err := SendSMS(phone, message); err != nil {
			log.Printf("ALERT (async): SMS for booking %s failed: %v", b.ID, err)
		}
	}(contact.Phone, message)
}
