package domain

import "time"

// AuditAction names a privileged action recorded in the audit trail.
type AuditAction string

const (
	AuditUserRegistered          AuditAction = "USER_REGISTERED"
	AuditUserLoggedIn            AuditAction = "USER_LOGGED_IN"
	AuditUserCreated             AuditAction = "USER_CREATED"
	AuditAdminCreated            AuditAction = "ADMIN_CREATED"
	AuditSuperAdminCreated       AuditAction = "SUPER_ADMIN_CREATED"
	AuditUserDeleted             AuditAction = "USER_DELETED"
	AuditAdminDeleted            AuditAction = "ADMIN_DELETED"
	AuditSuperAdminDeleted       AuditAction = "SUPER_ADMIN_DELETED"
	AuditSuperAdminExpiryUpdated AuditAction = "SUPER_ADMIN_EXPIRY_UPDATED"
	AuditUserRoleChanged         AuditAction = "USER_ROLE_CHANGED"
	AuditUserUpdated             AuditAction = "USER_UPDATED"
	AuditUserBusinessTypeUpdated AuditAction = "USER_BUSINESS_TYPE_UPDATED"
	AuditTicketCreated           AuditAction = "TICKET_CREATED"
	AuditTicketAssigned          AuditAction = "TICKET_ASSIGNED"
	AuditTicketStatusUpdated     AuditAction = "TICKET_STATUS_UPDATED"
	AuditTicketClosed            AuditAction = "TICKET_CLOSED"
	AuditTicketReopened          AuditAction = "TICKET_REOPENED"
	AuditTicketNoteAdded         AuditAction = "TICKET_NOTE_ADDED"
	AuditTicketDeleted           AuditAction = "TICKET_DELETED"
)

// AuditLog is an immutable record of a privileged action.
type AuditLog struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
	UserID    string      `json:"userId"`
	CreatedAt time.Time   `json:"createdAt"`
}

// LoginHistory records one successful login.
type LoginHistory struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	IPAddress  string    `json:"ipAddress"`
	DeviceInfo string    `json:"deviceInfo"`
	CreatedAt  time.Time `json:"createdAt"`
}
