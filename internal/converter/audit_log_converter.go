package converter

import (
	"hospital-scheduling/internal/delivery/dto"
	"hospital-scheduling/internal/domain/entity"
)

const (
	auditActorUser   = "user"
	auditActorSystem = "system"
)

func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	actor := auditActorUser
	if log.UserID == nil {
		actor = auditActorSystem
	}
	name, _ := log.Metadata["entity"].(string)
	id, _ := log.Metadata["entity_id"].(string)

	return &dto.AuditLogResponse{
		ID:        log.ID,
		Actor:     actor,
		UserID:    log.UserID,
		Action:    log.Action,
		Entity:    name,
		EntityID:  id,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt.UTC(),
	}
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = *AuditLogToResponse(&logs[i])
	}
	return responses
}
