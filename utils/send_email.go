package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

func SendEmail(to, subject, body string) error {
	from := os.Getenv("SMTP_EMAIL")
	pass := os.Getenv("SMTP_PASSWORD")
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	// UTF-8 & HTML headers
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	err := smtp.SendMail(
		host+":"+port,
		smtp.PlainAuth("", from, pass, host),
		from,
		[]string{to},
		[]byte(msg),
	)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendInvitationEmail mails an invite link. Delivery is best-effort; callers
// should not fail the request when this errors.
func SendInvitationEmail(to, token, inviterName, role string) error {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3001"
	}
	link := fmt.Sprintf("%s/accept-invite?token=%s", appURL, token)

	body := fmt.Sprintf(
		`<p>%s invited you to MediaHub as <b>%s</b>.</p>
<p><a href="%s">Accept the invitation</a> (valid for 7 days).</p>`,
		inviterName, role, link,
	)
	return SendEmail(to, "You've been invited to MediaHub", body)
}
