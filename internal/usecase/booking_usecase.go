package usecase

import (
	"context"
	"errors"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/observability/metrics"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "hospital-scheduling/internal/usecase"

// tracer resolves the global provider on every call.
func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// BookingPolicy tunes the booking engine.
type BookingPolicy struct {
	CompletionPolicy entity.CompletionPolicy
	// CompletionGrace is how long after a slot starts the sweep may
	// complete its booking.
	CompletionGrace time.Duration
	// MaxRetries bounds store attempts per booking request.
	MaxRetries int
}

type BookingUsecase interface {
	Book(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	// Cancel accepts either a booking id or a slot id.
	Cancel(ctx context.Context, id uuid.UUID) (*dto.CancellationResponse, error)
	Complete(ctx context.Context, bookingID uuid.UUID) (*dto.CompletionResponse, error)
	// CompleteElapsed completes every booking whose slot started longer ago
	// than the grace period. It does nothing under the doctor-only policy.
	CompleteElapsed(ctx context.Context) (int, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	ListMyBookings(ctx context.Context) (*dto.BookingListResponse, error)
	ListDoctorBookings(ctx context.Context, status entity.BookingStatus) (*dto.BookingListResponse, error)
}

type bookingUsecase struct {
	log          *logrus.Logger
	slotStore    repository.SlotStore
	allocator    *service.RevenueAllocator
	gate         service.SlotGate
	auditService service.AuditService
	events       service.EventPublisher
	metrics      *metrics.SchedulingMetrics
	policy       BookingPolicy
	now          func() time.Time
}

func NewBookingUsecase(
	log *logrus.Logger,
	slotStore repository.SlotStore,
	allocator *service.RevenueAllocator,
	gate service.SlotGate,
	auditService service.AuditService,
	events service.EventPublisher,
	schedulingMetrics *metrics.SchedulingMetrics,
	policy BookingPolicy,
) BookingUsecase {
	if policy.MaxRetries < 1 {
		policy.MaxRetries = 1
	}
	if policy.CompletionPolicy == "" {
		policy.CompletionPolicy = entity.CompletionPolicyDoctor
	}
	return &bookingUsecase{
		log:          log,
		slotStore:    slotStore,
		allocator:    allocator,
		gate:         gate,
		auditService: auditService,
		events:       events,
		metrics:      schedulingMetrics,
		policy:       policy,
		now:          time.Now,
	}
}

// Book reserves an open slot for the current patient.
//
// Flow:
// 1. Validate slot exists, is open and has not started
// 2. Claim the slot in the gate (losers are rejected without touching the store)
// 3. Compare-and-swap the slot from open to booked and insert the booking
// 4. Confirm the claim, or release it if the store failed
func (u *bookingUsecase) Book(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := tracer().Start(ctx, "BookingUsecase.Book", trace.WithAttributes(attribute.String("slot.id", req.SlotID.String())))
	defer span.End()
	started := time.Now()

	principal, err := requireRole(ctx, entity.RolePatient)
	if err != nil {
		u.observeBooking(span, started, metrics.OutcomeRejected, err)
		return nil, err
	}

	// Step 1: Validate slot
	slot, err := u.slotStore.FindSlotByID(ctx, req.SlotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", req.SlotID, err)
		u.observeBooking(span, started, metrics.OutcomeError, err)
		return nil, err
	}
	if slot == nil {
		u.observeBooking(span, started, metrics.OutcomeRejected, entity.ErrSlotNotFound)
		return nil, entity.ErrSlotNotFound
	}
	if !slot.IsOpen() || !slot.StartsAt.After(u.now()) {
		u.observeBooking(span, started, metrics.OutcomeUnavailable, entity.ErrSlotUnavailable)
		return nil, entity.ErrSlotUnavailable
	}

	// Step 2: Gate claim. A broken gate must not block booking; the store
	// decides anyway.
	claimed := true
	if err := u.gate.Claim(ctx, slot); err != nil {
		if errors.Is(err, service.ErrSlotClaimed) {
			u.observeBooking(span, started, metrics.OutcomeUnavailable, entity.ErrSlotUnavailable)
			return nil, entity.ErrSlotUnavailable
		}
		u.log.Warnf("Slot gate unavailable, falling back to store for slot %s: %+v", slot.ID, err)
		claimed = false
	}

	// Step 3: Atomic reservation
	booking, reserved, err := u.reserve(ctx, principal.UserID, slot)
	if err != nil {
		if claimed && !errors.Is(err, entity.ErrSlotUnavailable) {
			u.releaseClaim(ctx, slot.ID)
		}
		switch {
		case errors.Is(err, entity.ErrSlotUnavailable):
			u.log.Debugf("Slot %s lost to a concurrent booking", slot.ID)
			u.observeBooking(span, started, metrics.OutcomeUnavailable, err)
		case errors.Is(err, entity.ErrSlotNotFound):
			u.observeBooking(span, started, metrics.OutcomeRejected, err)
		default:
			u.log.Warnf("Failed to reserve slot %s: %+v", slot.ID, err)
			u.observeBooking(span, started, metrics.OutcomeError, err)
		}
		return nil, err
	}

	// Step 4: Keep the claim for the life of the slot
	if claimed {
		if err := u.gate.Confirm(ctx, reserved); err != nil {
			u.log.Warnf("Failed to confirm slot claim %s (non-fatal): %+v", slot.ID, err)
		}
	}

	u.metrics.ObserveTransition(string(entity.SlotStatusOpen), string(entity.SlotStatusBooked))
	u.observeBooking(span, started, metrics.OutcomeBooked, nil)
	span.SetAttributes(attribute.String("booking.id", booking.ID.String()))

	response := converter.BookingToResponse(booking, reserved)
	_ = u.auditService.LogCreate(ctx, principal.UserID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), response)
	u.events.Publish(ctx, service.NewEvent(service.EventBookingCreated, principal.UserID, response))

	u.log.Infof("Booking created: id=%s, slot=%s, code=%s, fee=%s", booking.ID, slot.ID, booking.BookingCode, booking.FeeCharged)
	return response, nil
}

// reserve retries the store on transient conflicts with a fresh booking
// code each time.
func (u *bookingUsecase) reserve(ctx context.Context, patientID uuid.UUID, slot *entity.Slot) (*entity.Booking, *entity.Slot, error) {
	var err error
	for attempt := 1; attempt <= u.policy.MaxRetries; attempt++ {
		booking := &entity.Booking{
			ID:          uuid.New(),
			PatientID:   patientID,
			BookingCode: generateBookingCode(slot.SlotDate),
		}
		var reserved *entity.Slot
		reserved, err = u.slotStore.ReserveSlot(ctx, slot.ID, booking)
		if err == nil {
			return booking, reserved, nil
		}
		if !errors.Is(err, entity.ErrConcurrentUpdate) {
			return nil, nil, err
		}
		u.log.Debugf("Retrying reservation of slot %s (attempt %d): %v", slot.ID, attempt, err)
	}
	return nil, nil, err
}

func (u *bookingUsecase) releaseClaim(ctx context.Context, slotID uuid.UUID) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := u.gate.Release(releaseCtx, slotID); err != nil {
		u.log.Warnf("Failed to release slot claim %s (non-fatal): %+v", slotID, err)
	}
}

func (u *bookingUsecase) observeBooking(span trace.Span, started time.Time, outcome string, err error) {
	u.metrics.ObserveBookingAttempt(outcome, time.Since(started).Seconds())
	span.SetAttributes(attribute.String("booking.outcome", outcome))
	if outcome == metrics.OutcomeError && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Cancel moves an open or booked slot, and its booking if any, to
// cancelled. The booking's patient and the slot's doctor may cancel.
// Cancelling something already cancelled succeeds without changes.
func (u *bookingUsecase) Cancel(ctx context.Context, id uuid.UUID) (*dto.CancellationResponse, error) {
	ctx, span := tracer().Start(ctx, "BookingUsecase.Cancel", trace.WithAttributes(attribute.String("target.id", id.String())))
	defer span.End()

	principal, err := requireRole(ctx, entity.RolePatient, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCancelAttempts; attempt++ {
		slot, booking, err := u.resolveTarget(ctx, id)
		if err != nil {
			return nil, err
		}
		if !canCancel(principal, slot, booking) {
			return nil, entity.ErrUnauthorized
		}

		switch slot.Status {
		case entity.SlotStatusCancelled:
			return cancellationResponse(slot, booking), nil
		case entity.SlotStatusCompleted:
			return nil, &entity.TransitionError{From: slot.Status, To: entity.SlotStatusCancelled}
		}

		cancelledSlot, cancelledBooking, err := u.slotStore.CancelSlot(ctx, slot.ID, slot.Status, principal.UserID)
		if errors.Is(err, entity.ErrConcurrentUpdate) {
			u.log.Debugf("Slot %s changed while cancelling, re-evaluating", slot.ID)
			continue
		}
		if err != nil {
			u.log.Warnf("Failed to cancel slot %s: %+v", slot.ID, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		if slot.Status == entity.SlotStatusBooked {
			u.releaseClaim(ctx, slot.ID)
		}
		u.metrics.ObserveTransition(string(slot.Status), string(entity.SlotStatusCancelled))

		response := cancellationResponse(cancelledSlot, cancelledBooking)
		if cancelledBooking != nil {
			_ = u.auditService.LogUpdate(ctx, principal.UserID, entity.AuditActionBookingCancel, "booking", cancelledBooking.ID.String(), converter.BookingToResponse(booking, slot), response.Booking)
			u.events.Publish(ctx, service.NewEvent(service.EventBookingCancelled, principal.UserID, response))
		} else {
			_ = u.auditService.LogUpdate(ctx, principal.UserID, entity.AuditActionSlotCancel, "slot", slot.ID.String(), converter.SlotToResponse(slot), response.Slot)
			u.events.Publish(ctx, service.NewEvent(service.EventSlotCancelled, principal.UserID, response))
		}

		u.log.Infof("Slot cancelled: id=%s, from=%s, by=%s", slot.ID, slot.Status, principal.UserID)
		return response, nil
	}
	return nil, entity.ErrConcurrentUpdate
}

// resolveTarget looks id up as a booking first, then as a slot.
func (u *bookingUsecase) resolveTarget(ctx context.Context, id uuid.UUID) (*entity.Slot, *entity.Booking, error) {
	booking, err := u.slotStore.FindBookingByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", id, err)
		return nil, nil, err
	}

	slotID := id
	if booking != nil {
		slotID = booking.SlotID
	}
	slot, err := u.slotStore.FindSlotByID(ctx, slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
		return nil, nil, err
	}
	if slot == nil {
		return nil, nil, entity.ErrBookingNotFound
	}

	if booking == nil {
		booking, err = u.slotStore.FindBookingBySlotID(ctx, slot.ID)
		if err != nil {
			u.log.Warnf("Failed to find booking for slot %s: %+v", slot.ID, err)
			return nil, nil, err
		}
	}
	return slot, booking, nil
}

func canCancel(principal entity.Principal, slot *entity.Slot, booking *entity.Booking) bool {
	if principal.Is(entity.RoleDoctor, slot.DoctorID) {
		return true
	}
	return booking != nil && principal.Is(entity.RolePatient, booking.PatientID)
}

func cancellationResponse(slot *entity.Slot, booking *entity.Booking) *dto.CancellationResponse {
	return &dto.CancellationResponse{
		Slot:    *converter.SlotToResponse(slot),
		Booking: converter.BookingToResponse(booking, nil),
	}
}

// Complete marks a booked consultation as done and allocates its revenue
// in the same unit of work. Only the slot's doctor may complete.
func (u *bookingUsecase) Complete(ctx context.Context, bookingID uuid.UUID) (*dto.CompletionResponse, error) {
	ctx, span := tracer().Start(ctx, "BookingUsecase.Complete", trace.WithAttributes(attribute.String("booking.id", bookingID.String())))
	defer span.End()

	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	booking, err := u.slotStore.FindBookingByID(ctx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, entity.ErrBookingNotFound
	}
	if booking.DoctorID != principal.UserID {
		return nil, entity.ErrUnauthorized
	}
	if !booking.IsBooked() {
		return nil, &entity.TransitionError{From: booking.SlotStatus(), To: entity.SlotStatusCompleted}
	}

	response, err := u.complete(ctx, booking.ID, principal.UserID)
	if err != nil {
		if !errors.Is(err, entity.ErrInvalidTransition) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	return response, nil
}

// complete runs the store transition with the allocation coupled in. actorID
// is uuid.Nil for the sweep.
func (u *bookingUsecase) complete(ctx context.Context, bookingID, actorID uuid.UUID) (*dto.CompletionResponse, error) {
	var entry *entity.RevenueLedgerEntry
	completed, err := u.slotStore.CompleteBooking(ctx, bookingID, func(ctx context.Context, booking *entity.Booking, ledger repository.LedgerRepository) error {
		allocated, err := u.allocator.Allocate(ctx, ledger, booking)
		if err != nil {
			return err
		}
		entry = allocated
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return nil, err
		}
		u.log.Warnf("Failed to complete booking %s: %+v", bookingID, err)
		return nil, err
	}

	u.metrics.ObserveTransition(string(entity.SlotStatusBooked), string(entity.SlotStatusCompleted))
	u.metrics.ObserveAllocation("doctor", entry.DoctorShare.InexactFloat64())
	u.metrics.ObserveAllocation("hospital", entry.HospitalShare.InexactFloat64())
	u.metrics.ObserveAllocation("platform", entry.PlatformShare.InexactFloat64())

	response := &dto.CompletionResponse{
		Booking: *converter.BookingToResponse(completed, nil),
		Ledger:  converter.LedgerEntryToResponse(entry),
	}
	_ = u.auditService.LogUpdate(ctx, actorID, entity.AuditActionBookingComplete, "booking", bookingID.String(), string(entity.BookingStatusBooked), response)
	u.events.Publish(ctx, service.NewEvent(service.EventBookingCompleted, actorID, response))

	u.log.Infof("Booking completed: id=%s, fee=%s, doctor=%s, hospital=%s, platform=%s",
		bookingID, entry.FeeCharged, entry.DoctorShare, entry.HospitalShare, entry.PlatformShare)
	return response, nil
}

func (u *bookingUsecase) CompleteElapsed(ctx context.Context) (int, error) {
	if u.policy.CompletionPolicy != entity.CompletionPolicyDoctorOrElapsed {
		return 0, nil
	}

	cutoff := u.now().Add(-u.policy.CompletionGrace)
	completed := 0
	for {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		due, err := u.slotStore.ListDueBookings(ctx, cutoff, storePageSize)
		if err != nil {
			u.log.Warnf("Failed to list due bookings: %+v", err)
			return completed, err
		}
		for i := range due {
			if _, err := u.complete(ctx, due[i].ID, uuid.Nil); err != nil {
				// Cancelled or completed since it was listed.
				if errors.Is(err, entity.ErrInvalidTransition) {
					continue
				}
				return completed, err
			}
			completed++
		}
		if len(due) < storePageSize {
			return completed, nil
		}
	}
}

// GetBooking returns a booking to its patient or its doctor.
func (u *bookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	principal, err := requireRole(ctx, entity.RolePatient, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	booking, err := u.slotStore.FindBookingByID(ctx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, entity.ErrBookingNotFound
	}
	if !principal.Is(entity.RolePatient, booking.PatientID) && !principal.Is(entity.RoleDoctor, booking.DoctorID) {
		return nil, entity.ErrUnauthorized
	}

	slot, err := u.slotStore.FindSlotByID(ctx, booking.SlotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", booking.SlotID, err)
		return nil, err
	}
	return converter.BookingToResponse(booking, slot), nil
}

// ListMyBookings returns all bookings of the logged-in patient, newest first.
func (u *bookingUsecase) ListMyBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	principal, err := requireRole(ctx, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	return u.listBookings(ctx, entity.BookingFilter{PatientID: principal.UserID})
}

// ListDoctorBookings returns the logged-in doctor's bookings, optionally
// narrowed to one status.
func (u *bookingUsecase) ListDoctorBookings(ctx context.Context, status entity.BookingStatus) (*dto.BookingListResponse, error) {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	return u.listBookings(ctx, entity.BookingFilter{DoctorID: principal.UserID, Status: status})
}

func (u *bookingUsecase) listBookings(ctx context.Context, filter entity.BookingFilter) (*dto.BookingListResponse, error) {
	bookings, err := u.slotStore.ListBookings(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list bookings: %+v", err)
		return nil, err
	}
	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}
