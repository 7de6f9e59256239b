package worker

import (
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/service"
)

// StartNotificationWorker registers the in-process notification handlers
// and, when a Redis sink is supplied, mirrors every transition event onto
// the configured Redis channel for external consumers.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, sink *events.RedisSink) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || sink == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketUnassigned,
		events.EventTicketEscalated,
		events.EventTicketResolved,
		events.EventTicketRejected,
		events.EventTicketReRaised,
	} {
		dispatcher.Subscribe(eventType, sink.Handle)
	}
}
