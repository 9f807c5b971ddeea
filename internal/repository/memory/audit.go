package memory

import (
	"context"
	"sync"
	"time"

	"hospital-scheduling/internal/domain/entity"
	domainRepo "hospital-scheduling/internal/domain/repository"
)

type AuditLogRepository struct {
	mu     sync.RWMutex
	logs   []entity.AuditLog
	nextID int64
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

var _ domainRepo.AuditLogRepository = (*AuditLogRepository)(nil)

func (r *AuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	log.ID = r.nextID
	log.CreatedAt = time.Now().UTC()
	r.logs = append(r.logs, *log)
	return nil
}

// FindAll returns newest first.
func (r *AuditLogRepository) FindAll(ctx context.Context, limit, offset int) ([]entity.AuditLog, error) {
	r.mu.RLock()
	out := make([]entity.AuditLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		out = append(out, r.logs[i])
	}
	r.mu.RUnlock()
	return paginate(out, offset, limit), nil
}

func (r *AuditLogRepository) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			out := r.logs[i]
			return &out, nil
		}
	}
	return nil, nil
}
