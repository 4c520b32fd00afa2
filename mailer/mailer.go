// Package mailer is the thin client for the notification relay. Sending is
// best-effort from the caller's point of view: operations fire it after
// commit and only log failures.
package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"volunteen/models"
)

type Sender interface {
	// Send delivers one message. reminderDate (YYYY-MM-DD) is optional; when
	// set the relay schedules a follow-up reminder for that morning.
	Send(recipient, subject, body, reminderDate string) error
}

type reminderInfo struct {
	Send         bool   `json:"send"`
	ReminderDate string `json:"reminderDate"`
}

type sendRequest struct {
	Recipient string        `json:"recipient"`
	Subject   string        `json:"subject"`
	BodyText  string        `json:"body_text"`
	Reminder  *reminderInfo `json:"reminder,omitempty"`
}

// HTTPSender posts to the mail relay's /send-email endpoint.
type HTTPSender struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSender(baseURL string) *HTTPSender {
	return &HTTPSender{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSender) Send(recipient, subject, body, reminderDate string) error {
	req := sendRequest{Recipient: recipient, Subject: subject, BodyText: body}
	if reminderDate != "" {
		req.Reminder = &reminderInfo{Send: true, ReminderDate: reminderDate}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := s.Client.Post(s.BaseURL+"/send-email", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail relay returned %d", resp.StatusCode)
	}
	return nil
}

// LogSender stands in when no relay is configured.
type LogSender struct{}

func (LogSender) Send(recipient, subject, _, _ string) error {
	log.Printf("mail (not sent, no relay configured): to=%s subject=%q", recipient, subject)
	return nil
}

// JoinConfirmation builds the message sent after a successful join, with the
// reminder scheduled one day before the event.
func JoinConfirmation(e models.Event) (subject, body, reminderDate string) {
	subject = "Event Confirmation: " + e.Name
	body = fmt.Sprintf(`Hello,

You have successfully joined the event: %s.
Date: %s
Time: %s
Location: %s
Instructions: %s

Thank you for volunteering!`, e.Name, e.Date, e.Time, e.Location, orNone(e.Instructions))

	if d, err := time.Parse("2006-01-02", e.Date); err == nil {
		reminderDate = d.AddDate(0, 0, -1).Format("2006-01-02")
	}
	return subject, body, reminderDate
}

// Verification builds the address-verification message sent at signup.
func Verification(email, baseURL, token string) (subject, body string) {
	subject = "Verify your Volunteen account"
	body = fmt.Sprintf(`Hello,

Please verify your email address by opening the link below:

%s/verify?token=%s

Thank you for joining Volunteen!`, baseURL, token)
	return subject, body
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
