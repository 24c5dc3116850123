package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"reportes_backend/internal/email"
	"reportes_backend/internal/whatsapp"
	"reportes_backend/platform/logger"
)

type stubNotificationConfig struct {
	baseURL string
	admins  []string
	region  string
}

func (c stubNotificationConfig) GetAppBaseURL() string        { return c.baseURL }
func (c stubNotificationConfig) GetAdminEmails() []string     { return c.admins }
func (c stubNotificationConfig) GetPhoneDefaultRegion() string { return c.region }

type emailCall struct {
	to   string
	data email.EventNotificationData
}

type fakeEmailSender struct {
	calls []emailCall
	err   error
}

func (f *fakeEmailSender) SendEventNotification(_ context.Context, to string, data email.EventNotificationData) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, emailCall{to: to, data: data})
	return nil
}

type waCall struct {
	to   string
	body string
}

type fakeWhatsApp struct {
	calls    []waCall
	err      error
	disabled bool
}

func (f *fakeWhatsApp) Enabled() bool {
	return !f.disabled
}

func (f *fakeWhatsApp) SendMessage(_ context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, waCall{to: to, body: body})
	return nil
}

func newDispatcher(sender *fakeEmailSender, wa *fakeWhatsApp, admins []string) *Dispatcher {
	cfg := stubNotificationConfig{baseURL: "https://reportes.example.com/", admins: admins, region: "US"}
	return New(sender, wa, cfg, logger.New("test"))
}

func TestDispatchEmailsResponsibleEmpleado(t *testing.T) {
	sender := &fakeEmailSender{}
	wa := &fakeWhatsApp{}
	d := newDispatcher(sender, wa, []string{"admin@example.com"})

	taskID := uuid.New()
	res := d.Dispatch(context.Background(), Input{
		EventoID:    uuid.New(),
		Tarea:       Tarea{ID: taskID, Titulo: "Fuga en bodega"},
		Descripcion: "Se reparó la tubería principal.",
		Empleado:    &Persona{Nombre: "Ana", Email: "ana@example.com"},
	})

	if res.EmailsSent != 1 {
		t.Fatalf("EmailsSent = %d, want 1", res.EmailsSent)
	}
	if len(sender.calls) != 1 || sender.calls[0].to != "ana@example.com" {
		t.Fatalf("calls = %+v, want single mail to the empleado", sender.calls)
	}
	wantLink := "https://reportes.example.com/tareas/" + taskID.String()
	if sender.calls[0].data.Link != wantLink {
		t.Fatalf("link = %q, want %q", sender.calls[0].data.Link, wantLink)
	}
	if sender.calls[0].data.TaskTitle != "Fuga en bodega" {
		t.Fatalf("task title = %q", sender.calls[0].data.TaskTitle)
	}
}

func TestDispatchFallsBackToAdmins(t *testing.T) {
	sender := &fakeEmailSender{}
	d := newDispatcher(sender, &fakeWhatsApp{}, []string{"a@example.com", "b@example.com"})

	res := d.Dispatch(context.Background(), Input{
		EventoID: uuid.New(),
		Tarea:    Tarea{ID: uuid.New(), Titulo: "t"},
		Empleado: &Persona{Nombre: "Sin Correo"},
	})

	if res.EmailsSent != 2 {
		t.Fatalf("EmailsSent = %d, want both admins", res.EmailsSent)
	}
}

func TestDispatchNoRecipientsSkipsQuietly(t *testing.T) {
	sender := &fakeEmailSender{}
	d := newDispatcher(sender, &fakeWhatsApp{}, nil)

	res := d.Dispatch(context.Background(), Input{
		EventoID: uuid.New(),
		Tarea:    Tarea{ID: uuid.New(), Titulo: "t"},
	})

	if res.EmailsSent != 0 || len(sender.calls) != 0 {
		t.Fatalf("expected no mail, got %+v", sender.calls)
	}
}

func TestDispatchWhatsAppNormalizesAndDedupes(t *testing.T) {
	wa := &fakeWhatsApp{}
	d := newDispatcher(&fakeEmailSender{}, wa, nil)

	res := d.Dispatch(context.Background(), Input{
		EventoID:    uuid.New(),
		Tarea:       Tarea{ID: uuid.New(), Titulo: "Revisión"},
		Descripcion: "Avance",
		Empleado:    &Persona{Telefono: "202-555-0125"},
		Participantes: []Persona{
			{Telefono: "+1 202-555-0125"}, // same number, different format
			{Telefono: "+1 202-555-0133"},
			{Telefono: "no es teléfono"},
			{Telefono: ""},
		},
	})

	if res.MessagesSent != 2 {
		t.Fatalf("MessagesSent = %d, want 2", res.MessagesSent)
	}
	if wa.calls[0].to != "+12025550125" || wa.calls[1].to != "+12025550133" {
		t.Fatalf("targets = %+v", wa.calls)
	}
	if !strings.Contains(wa.calls[0].body, "Se registró un avance en 'Revisión'.") {
		t.Fatalf("body = %q", wa.calls[0].body)
	}
	if !strings.Contains(wa.calls[0].body, "Ver más: https://reportes.example.com/tareas/") {
		t.Fatalf("body = %q", wa.calls[0].body)
	}
}

func TestDispatchTruncatesWhatsAppDescription(t *testing.T) {
	wa := &fakeWhatsApp{}
	d := newDispatcher(&fakeEmailSender{}, wa, nil)

	long := strings.Repeat("á", 250)
	d.Dispatch(context.Background(), Input{
		EventoID:    uuid.New(),
		Tarea:       Tarea{ID: uuid.New(), Titulo: "t"},
		Descripcion: long,
		Empleado:    &Persona{Telefono: "+12025550125"},
	})

	if len(wa.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(wa.calls))
	}
	if strings.Contains(wa.calls[0].body, long) {
		t.Fatal("description was not truncated")
	}
	if !strings.Contains(wa.calls[0].body, strings.Repeat("á", 200)) {
		t.Fatal("truncated description missing")
	}
}

func TestDispatchChannelFailuresAreAbsorbed(t *testing.T) {
	sender := &fakeEmailSender{err: errors.New("smtp down")}
	wa := &fakeWhatsApp{err: errors.New("twilio down")}
	d := newDispatcher(sender, wa, []string{"a@example.com"})

	res := d.Dispatch(context.Background(), Input{
		EventoID: uuid.New(),
		Tarea:    Tarea{ID: uuid.New(), Titulo: "t"},
		Empleado: &Persona{Email: "x@example.com", Telefono: "+12025550125"},
	})

	if res.EmailsSent != 0 || res.MessagesSent != 0 {
		t.Fatalf("res = %+v, want zero sends and no panic", res)
	}
}

func TestDispatchSkipsWhatsAppWhenGatewayDisabled(t *testing.T) {
	wa := &fakeWhatsApp{disabled: true}
	d := newDispatcher(&fakeEmailSender{}, wa, nil)

	res := d.Dispatch(context.Background(), Input{
		EventoID: uuid.New(),
		Tarea:    Tarea{ID: uuid.New(), Titulo: "t"},
		Empleado: &Persona{Telefono: "+12025550125"},
	})

	if res.MessagesSent != 0 {
		t.Fatalf("MessagesSent = %d, want 0 when the gateway is disabled", res.MessagesSent)
	}
	if len(wa.calls) != 0 {
		t.Fatalf("expected no gateway calls, got %d", len(wa.calls))
	}
}

func TestDispatchNilTwilioClientCountsNoSends(t *testing.T) {
	var client *whatsapp.Client
	cfg := stubNotificationConfig{baseURL: "https://reportes.example.com", region: "US"}
	d := New(&fakeEmailSender{}, client, cfg, logger.New("test"))

	res := d.Dispatch(context.Background(), Input{
		EventoID: uuid.New(),
		Tarea:    Tarea{ID: uuid.New(), Titulo: "t"},
		Empleado: &Persona{Telefono: "+12025550125"},
	})

	if res.MessagesSent != 0 {
		t.Fatalf("MessagesSent = %d, want 0 with an unconfigured client", res.MessagesSent)
	}
}
