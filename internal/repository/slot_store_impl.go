package repository

import (
	"context"
	"errors"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// slotStore keeps slots and bookings in postgres. Every transition is a
// conditional UPDATE on the observed status, so RowsAffected acts as the
// compare-and-swap result. Rows are always locked slot first, then booking.
type slotStore struct {
	db *gorm.DB
}

func NewSlotStore(db *gorm.DB) domainRepo.SlotStore {
	return &slotStore{db: db}
}

func (r *slotStore) CreateSlot(ctx context.Context, slot *entity.Slot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.Status == "" {
		slot.Status = entity.SlotStatusOpen
	}
	err := r.db.WithContext(ctx).Create(slot).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return entity.ErrSlotConflict
	}
	return err
}

func (r *slotStore) FindSlotByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	return findSlot(r.db.WithContext(ctx), id, false)
}

func findSlot(db *gorm.DB, id uuid.UUID, forUpdate bool) (*entity.Slot, error) {
	var slot entity.Slot
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

func (r *slotStore) ListOpenSlots(ctx context.Context, filter entity.SlotFilter) ([]entity.Slot, error) {
	var slots []entity.Slot
	query := r.db.WithContext(ctx).Where("status = ?", entity.SlotStatusOpen)

	if filter.HospitalID != uuid.Nil {
		query = query.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.DoctorID != uuid.Nil {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if !filter.From.IsZero() {
		query = query.Where("slot_date >= ?", filter.From.Format(entity.DateLayout))
	}
	if !filter.To.IsZero() {
		query = query.Where("slot_date <= ?", filter.To.Format(entity.DateLayout))
	}
	if filter.Specialization != "" {
		query = query.Where("LOWER(specialization) = LOWER(?)", filter.Specialization)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("slot_date ASC, start_time ASC, doctor_id ASC").Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotStore) ReserveSlot(ctx context.Context, slotID uuid.UUID, booking *entity.Booking) (*entity.Slot, error) {
	var reserved entity.Slot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		result := tx.Model(&entity.Slot{}).
			Where("id = ? AND status = ?", slotID, entity.SlotStatusOpen).
			Updates(map[string]interface{}{"status": entity.SlotStatusBooked, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			existing, err := findSlot(tx, slotID, false)
			if err != nil {
				return err
			}
			if existing == nil {
				return entity.ErrSlotNotFound
			}
			return entity.ErrSlotUnavailable
		}

		if err := tx.Where("id = ?", slotID).First(&reserved).Error; err != nil {
			return err
		}

		if booking.ID == uuid.Nil {
			booking.ID = uuid.New()
		}
		booking.SlotID = reserved.ID
		booking.DoctorID = reserved.DoctorID
		booking.HospitalID = reserved.HospitalID
		booking.FeeCharged = reserved.Fee
		booking.Status = entity.BookingStatusBooked

		if err := tx.Create(booking).Error; err != nil {
			// The slot row is held, so only the booking code can collide.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return entity.ErrConcurrentUpdate
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reserved, nil
}

func (r *slotStore) CancelSlot(ctx context.Context, slotID uuid.UUID, expected entity.SlotStatus, cancelledBy uuid.UUID) (*entity.Slot, *entity.Booking, error) {
	var (
		slot    *entity.Slot
		booking *entity.Booking
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findSlot(tx, slotID, true)
		if err != nil {
			return err
		}
		if current == nil {
			return entity.ErrSlotNotFound
		}
		if current.Status != expected {
			return entity.ErrConcurrentUpdate
		}
		if !expected.CanTransitionTo(entity.SlotStatusCancelled) {
			return &entity.TransitionError{From: expected, To: entity.SlotStatusCancelled}
		}

		now := time.Now().UTC()
		result := tx.Model(&entity.Slot{}).
			Where("id = ? AND status = ?", slotID, expected).
			Updates(map[string]interface{}{"status": entity.SlotStatusCancelled, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrConcurrentUpdate
		}
		current.Status = entity.SlotStatusCancelled
		current.UpdatedAt = now
		slot = current

		if err := tx.Model(&entity.Booking{}).
			Where("slot_id = ? AND status = ?", slotID, entity.BookingStatusBooked).
			Updates(map[string]interface{}{
				"status":       entity.BookingStatusCancelled,
				"cancelled_by": cancelledBy,
				"updated_at":   now,
			}).Error; err != nil {
			return err
		}

		booking, err = findBooking(tx.Where("slot_id = ?", slotID))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return slot, booking, nil
}

func (r *slotStore) CompleteBooking(ctx context.Context, bookingID uuid.UUID, allocate domainRepo.AllocateFunc) (*entity.Booking, error) {
	var completed *entity.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findBooking(tx.Where("id = ?", bookingID))
		if err != nil {
			return err
		}
		if found == nil {
			return entity.ErrBookingNotFound
		}

		slot, err := findSlot(tx, found.SlotID, true)
		if err != nil {
			return err
		}
		booking, err := findBooking(tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", bookingID))
		if err != nil {
			return err
		}
		if slot == nil || booking == nil || !booking.IsBooked() || slot.Status != entity.SlotStatusBooked {
			return &entity.TransitionError{From: found.SlotStatus(), To: entity.SlotStatusCompleted}
		}

		now := time.Now().UTC()
		if err := tx.Model(&entity.Slot{}).
			Where("id = ? AND status = ?", slot.ID, entity.SlotStatusBooked).
			Updates(map[string]interface{}{"status": entity.SlotStatusCompleted, "updated_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Booking{}).
			Where("id = ? AND status = ?", bookingID, entity.BookingStatusBooked).
			Updates(map[string]interface{}{"status": entity.BookingStatusCompleted, "updated_at": now}).Error; err != nil {
			return err
		}
		booking.Status = entity.BookingStatusCompleted
		booking.UpdatedAt = now

		if err := allocate(ctx, booking, &ledgerRepository{db: tx}); err != nil {
			return err
		}
		completed = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

func findBooking(query *gorm.DB) (*entity.Booking, error) {
	var booking entity.Booking
	err := query.First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *slotStore) FindBookingByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return findBooking(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *slotStore) FindBookingBySlotID(ctx context.Context, slotID uuid.UUID) (*entity.Booking, error) {
	return findBooking(r.db.WithContext(ctx).Where("slot_id = ?", slotID))
}

func (r *slotStore) ListBookings(ctx context.Context, filter entity.BookingFilter) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := r.db.WithContext(ctx)
	if filter.PatientID != uuid.Nil {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.DoctorID != uuid.Nil {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	err := query.Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *slotStore) ListDueBookings(ctx context.Context, before time.Time, limit int) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := r.db.WithContext(ctx).
		Joins("JOIN slots ON slots.id = bookings.slot_id").
		Where("bookings.status = ? AND slots.starts_at < ?", entity.BookingStatusBooked, before).
		Order("slots.starts_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *slotStore) ListClaimedSlots(ctx context.Context, since time.Time, offset, limit int) ([]entity.Slot, error) {
	var slots []entity.Slot
	err := r.db.WithContext(ctx).
		Where("status <> ? AND starts_at >= ?", entity.SlotStatusOpen, since).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}
