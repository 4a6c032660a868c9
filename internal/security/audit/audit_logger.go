package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventType represents the type of audit event
type EventType string

// EventSeverity represents the severity level of an audit event
type EventSeverity string

const (
	// Event types
	EventTypeWebhook      EventType = "webhook"
	EventTypePayment      EventType = "payment"
	EventTypeDisbursement EventType = "disbursement"

	// Severity levels
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityError    EventSeverity = "error"
	SeverityCritical EventSeverity = "critical"
)

// AuditLog represents an audit log entry in the database
type AuditLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EventType   string    `gorm:"index"`
	Severity    string
	Description string
	Reference   string `gorm:"index"`
	IPAddress   string
	UserAgent   string
	Metadata    *string   `gorm:"type:jsonb"`
	CreatedAt   time.Time `gorm:"index"`
	Success     bool
}

// Event is one auditable action
type Event struct {
	Type        EventType
	Severity    EventSeverity
	Description string
	// Reference is the tx_reference or identifier the event is about
	Reference string
	IPAddress string
	UserAgent string
	Success   bool
	Metadata  map[string]interface{}
}

// Logger is the audit logger
type Logger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLogger creates a new audit logger
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{
		db:  db,
		now: time.Now,
	}
}

// Log writes an audit event
func (l *Logger) Log(ctx context.Context, event Event) error {
	entry, err := l.entry(event)
	if err != nil {
		return err
	}
	return l.db.WithContext(ctx).Create(entry).Error
}

func (l *Logger) entry(event Event) (*AuditLog, error) {
	severity := event.Severity
	if severity == "" {
		severity = SeverityInfo
	}

	var metadata *string
	if event.Metadata != nil {
		b, err := json.Marshal(event.Metadata)
		if err != nil {
			return nil, err
		}
		s := string(b)
		metadata = &s
	}

	return &AuditLog{
		ID:          uuid.New(),
		EventType:   string(event.Type),
		Severity:    string(severity),
		Description: event.Description,
		Reference:   event.Reference,
		IPAddress:   event.IPAddress,
		UserAgent:   event.UserAgent,
		Metadata:    metadata,
		CreatedAt:   l.now(),
		Success:     event.Success,
	}, nil
}

// RecentByType returns the latest audit logs of one type
func (l *Logger) RecentByType(ctx context.Context, eventType EventType, limit int) ([]AuditLog, error) {
	var logs []AuditLog
	err := l.db.WithContext(ctx).
		Where("event_type = ?", string(eventType)).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
