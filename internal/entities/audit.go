package entities

import "time"

// AuditEventType groups audit events by the part of the system that changed.
type AuditEventType string

const (
	AuditEventLoan         AuditEventType = "loan"
	AuditEventCatalog      AuditEventType = "catalog"
	AuditEventMembership   AuditEventType = "membership"
	AuditEventWishlist     AuditEventType = "wishlist"
	AuditEventNotification AuditEventType = "notification"
	AuditEventAuth         AuditEventType = "auth"
)

var auditEventTypes = []AuditEventType{
	AuditEventLoan, AuditEventCatalog, AuditEventMembership,
	AuditEventWishlist, AuditEventNotification, AuditEventAuth,
}

// ParseAuditEventType accepts only the known event types.
func ParseAuditEventType(s string) (AuditEventType, bool) {
	for _, t := range auditEventTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Entity kinds an audit event can point at through EntityID.
const (
	AuditEntityBook     = "book"
	AuditEntityBorrower = "borrower"
	AuditEntityLoan     = "loan"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one row of the audit trail. ActorID is 0 for system work
// such as the background scans.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ActorID     uint           `gorm:"index" json:"actor_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"` // issue, return, renew, book_add, register, ...
	Description string         `gorm:"size:500" json:"description"`
	EntityType  string         `gorm:"size:50" json:"entity_type,omitempty"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON object
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
