package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/salonhq/admin-api/internal/email"
	"github.com/salonhq/admin-api/internal/model"
	"github.com/salonhq/admin-api/internal/repository"
	"github.com/salonhq/admin-api/pkg/logger"
	"github.com/salonhq/admin-api/pkg/messaging"
)

// BookingNotifier consumes booking events from the broker and mails
// customers. It runs alongside the outbox processor so the API never
// blocks on SMTP.
type BookingNotifier struct {
	broker    messaging.Broker
	email     email.Service
	customers repository.CustomerRepository
	services  repository.ServiceRepository
	staff     repository.StaffRepository
	logger    *logger.Logger
}

func NewBookingNotifier(
	broker messaging.Broker,
	emailSvc email.Service,
	customers repository.CustomerRepository,
	services repository.ServiceRepository,
	staff repository.StaffRepository,
	logger *logger.Logger,
) *BookingNotifier {
	return &BookingNotifier{
		broker:    broker,
		email:     emailSvc,
		customers: customers,
		services:  services,
		staff:     staff,
		logger:    logger,
	}
}

func (n *BookingNotifier) Start(ctx context.Context) error {
	created, err := n.broker.Subscribe(ctx, model.EventBookingCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to created events: %w", err)
	}
	cancelled, err := n.broker.Subscribe(ctx, model.EventBookingCancelled)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cancelled events: %w", err)
	}

	n.logger.Info("Starting booking notifier")

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("Shutting down booking notifier")
			return nil
		case payload, ok := <-created:
			if !ok {
				return nil
			}
			if err := n.notify(ctx, payload, true); err != nil {
				n.logger.Error(err, "Failed to send confirmation email")
			}
		case payload, ok := <-cancelled:
			if !ok {
				return nil
			}
			if err := n.notify(ctx, payload, false); err != nil {
				n.logger.Error(err, "Failed to send cancellation email")
			}
		}
	}
}

func (n *BookingNotifier) notify(ctx context.Context, payload []byte, confirmed bool) error {
	var booking model.Booking
	if err := json.Unmarshal(payload, &booking); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	customer, err := n.customers.Get(ctx, booking.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to load customer %s: %w", booking.CustomerID, err)
	}
	if customer.Email == "" {
		return nil
	}

	svc, err := n.services.Get(ctx, booking.ServiceID)
	if err != nil {
		return fmt.Errorf("failed to load service %s: %w", booking.ServiceID, err)
	}

	if !confirmed {
		return n.email.SendBookingCancellation(ctx, customer.Email, customer.FirstName, svc.Name)
	}

	member, err := n.staff.Get(ctx, booking.StaffID)
	if err != nil {
		return fmt.Errorf("failed to load staff %s: %w", booking.StaffID, err)
	}

	line := email.BookingLine{
		ServiceName: svc.Name,
		StaffName:   fmt.Sprintf("%s %s", member.FirstName, member.LastName),
		Start:       booking.StartTime.Format(time.RFC1123),
		End:         booking.EndTime.Format(time.RFC1123),
	}

	return n.email.SendBookingConfirmation(ctx, customer.Email, customer.FirstName, []email.BookingLine{line})
}
