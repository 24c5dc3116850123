package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskReverseGeocode = "ubicaciones.reverse_geocode"

const TaskEventNotifications = "eventos.notifications"

// ReverseGeocodePayload parameterizes one resolver attempt. Attempt counts
// from zero; the retry budget lives in the ubicaciones service, not here.
type ReverseGeocodePayload struct {
	UbicacionID string `json:"ubicacionId"`
	Attempt     int    `json:"attempt"`
}

// EventNotificationsPayload parameterizes a notification dispatch for a
// progress event, optionally carrying the closing report.
type EventNotificationsPayload struct {
	EventoID string  `json:"eventoId"`
	ReportID *string `json:"reportId,omitempty"`
}

func NewReverseGeocodeTask(payload ReverseGeocodePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReverseGeocode, data), nil
}

func ParseReverseGeocodePayload(task *asynq.Task) (ReverseGeocodePayload, error) {
	var payload ReverseGeocodePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReverseGeocodePayload{}, err
	}
	return payload, nil
}

func NewEventNotificationsTask(payload EventNotificationsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEventNotifications, data), nil
}

func ParseEventNotificationsPayload(task *asynq.Task) (EventNotificationsPayload, error) {
	var payload EventNotificationsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EventNotificationsPayload{}, err
	}
	return payload, nil
}
