package services

import (
	"encoding/json"
	"fmt"

	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"gorm.io/gorm"
)

// logAudit appends an audit row on the given transaction handle, so the
// entry commits or rolls back together with the mutation it describes.
func logAudit(tx *gorm.DB, actorID *uint, actorRole, action, resourceType string, resourceID uint, meta map[string]interface{}) error {
	payload := ""
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to encode audit meta: %w", err)
		}
		payload = string(b)
	}

	entry := models.AuditLog{
		ActorID:      actorID,
		ActorRole:    actorRole,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   fmt.Sprintf("%d", resourceID),
		Meta:         payload,
	}
	return tx.Create(&entry).Error
}
