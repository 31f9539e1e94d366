package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/kinekixcc/kheladi-sub001/config"
	"github.com/kinekixcc/kheladi-sub001/models"
)

// EmailNotifier delivers workflow notifications over SMTP. It implements
// Notifier; failures are the caller's to log, never to roll back on.
type EmailNotifier struct {
	cfg *config.Config
}

func NewEmailNotifier(cfg *config.Config) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) InvitationIssued(ctx context.Context, invitee *models.User, team *models.Team, inviter *models.User, message *string) error {
	subject := fmt.Sprintf("You have been invited to join %s", team.Name)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>%s invited you to join <b>%s</b>.</p>",
		invitee.FullName, inviter.FullName, team.Name,
	)
	if message != nil && *message != "" {
		body += fmt.Sprintf("<p>Message from the captain: %s</p>", *message)
	}
	body += fmt.Sprintf(
		"<p><a href=%q>Open your invitations</a> to respond. The invitation expires in 7 days.</p>",
		n.cfg.PublicURL+"/invitations",
	)
	return n.send(ctx, invitee.Email, subject, body)
}

func (n *EmailNotifier) InvitationAccepted(ctx context.Context, captain *models.User, team *models.Team, joined *models.User) error {
	subject := fmt.Sprintf("%s joined %s", joined.FullName, team.Name)
	body := fmt.Sprintf("<p>%s accepted the invitation and is now a member of %s.</p>", joined.FullName, team.Name)
	return n.send(ctx, captain.Email, subject, body)
}

func (n *EmailNotifier) InvitationDeclined(ctx context.Context, captain *models.User, team *models.Team, declined *models.User) error {
	subject := fmt.Sprintf("%s declined your invitation", declined.FullName)
	body := fmt.Sprintf("<p>%s declined the invitation to join %s.</p>", declined.FullName, team.Name)
	return n.send(ctx, captain.Email, subject, body)
}

func (n *EmailNotifier) MemberRemoved(ctx context.Context, removed *models.User, team *models.Team) error {
	subject := fmt.Sprintf("You have been removed from %s", team.Name)
	body := fmt.Sprintf("<p>Hi %s, you are no longer a member of %s.</p>", removed.FullName, team.Name)
	return n.send(ctx, removed.Email, subject, body)
}

func (n *EmailNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := []byte("To: " + to + "\r\n" +
		"From: " + n.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	tlsConfig := &tls.Config{ServerName: n.cfg.SMTPHost}

	var client *smtp.Client
	if n.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial: %w", err)
		}
		client, err = smtp.NewClient(conn, n.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", n.cfg.SMTPUser, n.cfg.SMTPPass, n.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(n.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}
