// Package notification fans task progress events out to email and WhatsApp.
// Domain modules hand it a loaded aggregate; providers, templates and phone
// bookkeeping stay out of their sight.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"reportes_backend/internal/email"
	"reportes_backend/platform/config"
	"reportes_backend/platform/logger"
	"reportes_backend/platform/phone"
)

// whatsAppBodyLimit caps how much of the event description goes into the
// WhatsApp message.
const whatsAppBodyLimit = 200

// WhatsAppSender sends WhatsApp messages. Enabled reports whether the
// gateway is configured; a disabled gateway is a skip, never a counted send.
type WhatsAppSender interface {
	Enabled() bool
	SendMessage(ctx context.Context, phoneNumber string, message string) error
}

// Tarea identifies the task a notification is about.
type Tarea struct {
	ID     uuid.UUID
	Titulo string
}

// Persona is a notification target: display name plus whatever contact
// details are on file. Empty fields simply exclude a channel.
type Persona struct {
	Nombre   string
	Email    string
	Telefono string
}

// Input is the fully loaded aggregate for one dispatch.
type Input struct {
	EventoID      uuid.UUID
	Tarea         Tarea
	Descripcion   string
	Empleado      *Persona
	Participantes []Persona
	ReportContent string
}

// Result reports which channels actually went out.
type Result struct {
	EmailsSent   int
	MessagesSent int
}

// Dispatcher delivers progress notifications across channels. Channel
// failures are logged and absorbed: notification delivery never fails the
// business operation that triggered it.
type Dispatcher struct {
	sender        email.Sender
	whatsapp      WhatsAppSender
	log           *logger.Logger
	baseURL       string
	adminEmails   []string
	defaultRegion string
}

// New creates a dispatcher. whatsapp may be a nil-receiver client; the
// channel is then skipped and never reported as sent.
func New(sender email.Sender, whatsapp WhatsAppSender, cfg config.NotificationConfig, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender:        sender,
		whatsapp:      whatsapp,
		log:           log,
		baseURL:       strings.TrimRight(cfg.GetAppBaseURL(), "/"),
		adminEmails:   cfg.GetAdminEmails(),
		defaultRegion: cfg.GetPhoneDefaultRegion(),
	}
}

// Dispatch sends the email and WhatsApp notifications for one progress
// event. It always returns a Result, never an error.
func (d *Dispatcher) Dispatch(ctx context.Context, input Input) Result {
	link := fmt.Sprintf("%s/tareas/%s", d.baseURL, input.Tarea.ID)

	var res Result
	res.EmailsSent = d.dispatchEmail(ctx, input, link)
	res.MessagesSent = d.dispatchWhatsApp(ctx, input, link)
	return res
}

// dispatchEmail mails the responsible empleado, falling back to the admin
// list when the empleado has no address on file.
func (d *Dispatcher) dispatchEmail(ctx context.Context, input Input, link string) int {
	var recipients []string
	if input.Empleado != nil && input.Empleado.Email != "" {
		recipients = []string{input.Empleado.Email}
	} else {
		recipients = d.adminEmails
	}
	if len(recipients) == 0 {
		d.log.Info("event notification skipped, no email recipients", "evento_id", input.EventoID)
		return 0
	}

	data := email.EventNotificationData{
		TaskTitle:     input.Tarea.Titulo,
		Description:   input.Descripcion,
		ReportContent: input.ReportContent,
		Link:          link,
	}

	sent := 0
	for _, to := range recipients {
		if err := d.sender.SendEventNotification(ctx, to, data); err != nil {
			d.log.Error("event notification email failed", "evento_id", input.EventoID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// dispatchWhatsApp messages every participant with a usable phone number,
// the responsible empleado included.
func (d *Dispatcher) dispatchWhatsApp(ctx context.Context, input Input, link string) int {
	if d.whatsapp == nil || !d.whatsapp.Enabled() {
		d.log.Info("event notification whatsapp skipped, gateway not configured", "evento_id", input.EventoID)
		return 0
	}

	targets := input.Participantes
	if input.Empleado != nil {
		targets = append([]Persona{*input.Empleado}, targets...)
	}

	phones := d.collectPhones(targets)
	if len(phones) == 0 {
		return 0
	}

	body := fmt.Sprintf("Se registró un avance en '%s'.\n%s\nVer más: %s",
		input.Tarea.Titulo, truncate(input.Descripcion, whatsAppBodyLimit), link)

	sent := 0
	for _, number := range phones {
		if err := d.whatsapp.SendMessage(ctx, number, body); err != nil {
			d.log.Error("event notification whatsapp failed", "evento_id", input.EventoID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// collectPhones normalizes every phone on file to E.164, dropping the ones
// that do not parse and deduplicating while preserving order.
func (d *Dispatcher) collectPhones(targets []Persona) []string {
	seen := make(map[string]struct{})
	var phones []string
	for _, t := range targets {
		normalized, ok := phone.Normalize(t.Telefono, d.defaultRegion)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		phones = append(phones, normalized)
	}
	return phones
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
