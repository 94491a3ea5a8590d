package utils

import (
	"errors"
	"fmt"
	"html"
	"net/smtp"
	"strings"
)

// MailConfig holds SMTP settings. An incomplete config means mock delivery.
type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != ""
}

// RoomInfo is a room line in guest emails.
type RoomInfo struct {
	Number string
	Type   string
}

type BookingConfirmation struct {
	ResortName  string
	GuestName   string
	GuestEmail  string
	DisplayID   string
	PackageName string
	CheckIn     string
	CheckOut    string
	Nights      int
	Rooms       []RoomInfo
	Adults      int
	Children    int
	TotalAmount float64
}

var ErrMailDisabled = errors.New("smtp not configured")

// SendBookingConfirmationEmail sends a multipart plain/html confirmation.
// Returns ErrMailDisabled when SMTP is not configured so callers can log a mock send.
func SendBookingConfirmationEmail(cfg MailConfig, b BookingConfirmation) error {
	if !cfg.Enabled() {
		return ErrMailDisabled
	}
	if strings.TrimSpace(b.GuestEmail) == "" {
		return errors.New("missing recipient")
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	resort := safe(b.ResortName)
	if resort == "" {
		resort = safe(cfg.FromName)
	}

	subject := fmt.Sprintf("Booking Confirmation %s - %s", safe(b.DisplayID), resort)
	if b.PackageName != "" {
		subject = fmt.Sprintf("Package Booking Confirmation %s - %s", safe(b.DisplayID), resort)
	}
	boundary := "----=_RESORT_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your booking %s is confirmed.\n\n"+
			"Rooms:\n%s\n"+
			"Check-In: %s\n"+
			"Check-Out: %s\n"+
			"Nights: %d\n"+
			"Guests: %d adults, %d children\n"+
			"Estimated charges: %.2f\n\n"+
			"Best regards,\n%s",
		safe(b.GuestName), safe(b.DisplayID), roomsListText(b.Rooms),
		safe(b.CheckIn), safe(b.CheckOut), b.Nights, b.Adults, b.Children, b.TotalAmount, resort,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Booking Confirmation</title></head>
<body style="background:#f5f7fb;font-family:Arial,Helvetica,sans-serif;color:#222">
<div style="max-width:700px;margin:20px auto;background:#fff;border:1px solid #e6eef6;padding:24px;border-radius:8px">
  <h2>Booking Confirmation</h2>
  <p>Dear %s,</p>
  <p>Your booking <strong>%s</strong> is confirmed.</p>
  %s
  <p>Check-In: %s<br>Check-Out: %s<br>Nights: %d</p>
  <p>Guests: %d adults, %d children</p>
  <p>Estimated charges: %.2f</p>
  <p>Best regards,<br>%s</p>
</div>
</body>
</html>`,
		html.EscapeString(b.GuestName), html.EscapeString(b.DisplayID), roomsListHTML(b.Rooms),
		html.EscapeString(b.CheckIn), html.EscapeString(b.CheckOut), b.Nights,
		b.Adults, b.Children, b.TotalAmount, html.EscapeString(resort),
	)

	from := fmt.Sprintf("%s <%s>", safe(cfg.FromName), cfg.Username)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", safe(b.GuestEmail)))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))
	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")
	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")
	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	return smtp.SendMail(addr, auth, cfg.Username, []string{b.GuestEmail}, []byte(sb.String()))
}

func roomsListText(rooms []RoomInfo) string {
	if len(rooms) == 0 {
		return " - whole property\n"
	}
	var b strings.Builder
	for _, r := range rooms {
		if typ := strings.TrimSpace(r.Type); typ != "" {
			b.WriteString(fmt.Sprintf(" - %s (%s)\n", strings.TrimSpace(r.Number), typ))
		} else {
			b.WriteString(fmt.Sprintf(" - %s\n", strings.TrimSpace(r.Number)))
		}
	}
	return b.String()
}

func roomsListHTML(rooms []RoomInfo) string {
	if len(rooms) == 0 {
		return "<p><em>Whole property</em></p>"
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, r := range rooms {
		if typ := strings.TrimSpace(r.Type); typ != "" {
			b.WriteString(fmt.Sprintf("<li>%s (%s)</li>", html.EscapeString(r.Number), html.EscapeString(typ)))
		} else {
			b.WriteString(fmt.Sprintf("<li>%s</li>", html.EscapeString(r.Number)))
		}
	}
	b.WriteString("</ul>")
	return b.String()
}
