package usecase

import (
	"context"
	"errors"
	"iter"
	"time"

	"hospital-scheduling/internal/converter"
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"
	"hospital-scheduling/internal/observability/metrics"
	"hospital-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	OpenSlot(ctx context.Context, req *dto.OpenSlotRequest) (*dto.SlotResponse, error)
	CancelOpenSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, error)
	GetSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, error)
	ListOpenSlots(ctx context.Context, query *dto.SlotQuery) (*dto.SlotListResponse, error)
	// OpenSlots walks every open slot matching filter, in listing order.
	// The filter's Offset and Limit are ignored. Each call starts over.
	OpenSlots(ctx context.Context, filter entity.SlotFilter) iter.Seq2[entity.Slot, error]
}

type availabilityUsecase struct {
	log             *logrus.Logger
	slotStore       repository.SlotStore
	associationRepo repository.AssociationRepository
	auditService    service.AuditService
	events          service.EventPublisher
	metrics         *metrics.SchedulingMetrics
	location        *time.Location
	now             func() time.Time
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	slotStore repository.SlotStore,
	associationRepo repository.AssociationRepository,
	auditService service.AuditService,
	events service.EventPublisher,
	schedulingMetrics *metrics.SchedulingMetrics,
	location *time.Location,
) AvailabilityUsecase {
	if location == nil {
		location = time.UTC
	}
	return &availabilityUsecase{
		log:             log,
		slotStore:       slotStore,
		associationRepo: associationRepo,
		auditService:    auditService,
		events:          events,
		metrics:         schedulingMetrics,
		location:        location,
		now:             time.Now,
	}
}

// OpenSlot publishes a bookable slot for the current doctor at one of the
// doctor's hospitals. The association's fee and specialization at this
// moment are captured into the slot.
func (u *availabilityUsecase) OpenSlot(ctx context.Context, req *dto.OpenSlotRequest) (*dto.SlotResponse, error) {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	slotDate, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	startsAt, err := time.ParseInLocation(entity.DateLayout+" "+entity.ClockLayout, req.Date+" "+req.Time, u.location)
	if err != nil {
		return nil, entity.ErrInvalidTime
	}
	if !startsAt.After(u.now()) {
		return nil, entity.ErrSlotInPast
	}

	association, err := u.associationRepo.Find(ctx, principal.UserID, req.HospitalID)
	if err != nil {
		u.log.Warnf("Failed to find association doctor=%s hospital=%s: %+v", principal.UserID, req.HospitalID, err)
		return nil, err
	}
	if association == nil || !association.Active {
		return nil, entity.ErrNotAssociated
	}

	slot := &entity.Slot{
		ID:             uuid.New(),
		DoctorID:       principal.UserID,
		HospitalID:     req.HospitalID,
		SlotDate:       slotDate,
		StartTime:      startsAt.Format(entity.ClockLayout),
		StartsAt:       startsAt.UTC(),
		Specialization: association.Specialization,
		Fee:            association.Fee,
		Status:         entity.SlotStatusOpen,
	}
	if err := u.slotStore.CreateSlot(ctx, slot); err != nil {
		if errors.Is(err, entity.ErrSlotConflict) {
			u.log.Debugf("Slot conflict for doctor %s at %s %s", principal.UserID, req.Date, slot.StartTime)
			return nil, err
		}
		u.log.Warnf("Failed to create slot: %+v", err)
		return nil, err
	}

	response := converter.SlotToResponse(slot)
	_ = u.auditService.LogCreate(ctx, principal.UserID, entity.AuditActionSlotOpen, "slot", slot.ID.String(), response)
	u.events.Publish(ctx, service.NewEvent(service.EventSlotOpened, principal.UserID, response))

	u.log.Infof("Slot opened: id=%s, doctor=%s, hospital=%s, starts_at=%s", slot.ID, slot.DoctorID, slot.HospitalID, slot.StartsAt.Format(time.RFC3339))
	return response, nil
}

// CancelOpenSlot withdraws one of the current doctor's open slots. A slot
// that is already cancelled is returned unchanged.
func (u *availabilityUsecase) CancelOpenSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, error) {
	principal, err := requireRole(ctx, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCancelAttempts; attempt++ {
		slot, err := u.slotStore.FindSlotByID(ctx, slotID)
		if err != nil {
			u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
			return nil, err
		}
		if slot == nil {
			return nil, entity.ErrSlotNotFound
		}
		if slot.DoctorID != principal.UserID {
			return nil, entity.ErrUnauthorized
		}

		switch slot.Status {
		case entity.SlotStatusCancelled:
			return converter.SlotToResponse(slot), nil
		case entity.SlotStatusOpen:
		default:
			return nil, &entity.TransitionError{From: slot.Status, To: entity.SlotStatusCancelled}
		}

		cancelled, _, err := u.slotStore.CancelSlot(ctx, slotID, entity.SlotStatusOpen, principal.UserID)
		if errors.Is(err, entity.ErrConcurrentUpdate) {
			continue
		}
		if err != nil {
			u.log.Warnf("Failed to cancel slot %s: %+v", slotID, err)
			return nil, err
		}

		u.metrics.ObserveTransition(string(entity.SlotStatusOpen), string(entity.SlotStatusCancelled))
		response := converter.SlotToResponse(cancelled)
		_ = u.auditService.LogUpdate(ctx, principal.UserID, entity.AuditActionSlotCancel, "slot", slotID.String(), converter.SlotToResponse(slot), response)
		u.events.Publish(ctx, service.NewEvent(service.EventSlotCancelled, principal.UserID, response))

		u.log.Infof("Open slot cancelled: id=%s, doctor=%s", slotID, principal.UserID)
		return response, nil
	}
	return nil, entity.ErrConcurrentUpdate
}

func (u *availabilityUsecase) GetSlot(ctx context.Context, slotID uuid.UUID) (*dto.SlotResponse, error) {
	slot, err := u.slotStore.FindSlotByID(ctx, slotID)
	if err != nil {
		u.log.Warnf("Failed to find slot %s: %+v", slotID, err)
		return nil, err
	}
	if slot == nil {
		return nil, entity.ErrSlotNotFound
	}
	return converter.SlotToResponse(slot), nil
}

// ListOpenSlots returns one page of open slots for the public listing.
func (u *availabilityUsecase) ListOpenSlots(ctx context.Context, query *dto.SlotQuery) (*dto.SlotListResponse, error) {
	from, to, err := parseDateRange(query.From, query.To)
	if err != nil {
		return nil, err
	}
	limit, offset := normalizePage(query.Limit, query.Offset)

	slots, err := u.slotStore.ListOpenSlots(ctx, entity.SlotFilter{
		HospitalID:     query.HospitalID,
		DoctorID:       query.DoctorID,
		From:           from,
		To:             to,
		Specialization: query.Specialization,
		Offset:         offset,
		Limit:          limit,
	})
	if err != nil {
		u.log.Warnf("Failed to list open slots: %+v", err)
		return nil, err
	}

	return &dto.SlotListResponse{
		Slots:  converter.SlotsToResponses(slots),
		Total:  len(slots),
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (u *availabilityUsecase) OpenSlots(ctx context.Context, filter entity.SlotFilter) iter.Seq2[entity.Slot, error] {
	return func(yield func(entity.Slot, error) bool) {
		page := filter
		page.Offset = 0
		page.Limit = storePageSize
		for {
			slots, err := u.slotStore.ListOpenSlots(ctx, page)
			if err != nil {
				yield(entity.Slot{}, err)
				return
			}
			for _, slot := range slots {
				if !yield(slot, nil) {
					return
				}
			}
			if len(slots) < page.Limit {
				return
			}
			page.Offset += len(slots)
		}
	}
}
