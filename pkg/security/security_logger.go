package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventValidationFailed   EventType = "validation_failed"
	EventPersistenceFailed  EventType = "persistence_failed"
	EventNotificationFailed EventType = "notification_failed"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip", "submission_id"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	// Optional: DB persistence, drained by a single worker
	persistFunc func(ctx context.Context, event SecurityEvent) error
	queue       chan SecurityEvent
	done        chan struct{}
	mu          sync.RWMutex
	closed      bool
}

// persistQueueSize bounds events waiting for the database; overflow is dropped.
const persistQueueSize = 256

// persisted reports whether an event type is written to the database.
// High-volume request rejections are only logged.
func persisted(t EventType) bool {
	switch t {
	case EventPersistenceFailed, EventNotificationFailed, EventUnauthorizedAccess:
		return true
	}
	return false
}

// InitSecurityLogger builds a production zap logger writing JSON to stdout.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return NewSecurityLogger(logger, serviceName, environment)
}

// NewSecurityLogger wraps an existing zap logger.
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// Nop returns a logger that discards everything.
func Nop() *SecurityLogger {
	return NewSecurityLogger(zap.NewNop(), "", "")
}

// SetPersistFunc starts the persistence worker. Call it once, before logging.
func (sl *SecurityLogger) SetPersistFunc(f func(ctx context.Context, event SecurityEvent) error) {
	sl.persistFunc = f
	sl.queue = make(chan SecurityEvent, persistQueueSize)
	sl.done = make(chan struct{})
	go sl.persistLoop()
}

func (sl *SecurityLogger) persistLoop() {
	defer close(sl.done)
	for e := range sl.queue {
		// Request context may already be canceled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := sl.persistFunc(ctx, e); err != nil {
			sl.zapLogger.Error("Failed to persist security event", zap.Error(err))
		}
		cancel()
	}
}

func (sl *SecurityLogger) enqueue(e SecurityEvent) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.queue == nil || sl.closed {
		return
	}
	select {
	case sl.queue <- e:
	default:
		sl.zapLogger.Warn("Security event queue full, dropping event", zap.String("event", string(e.Event)))
	}
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := zapcore.WarnLevel
	switch event.Event {
	case EventValidationFailed:
		level = zapcore.InfoLevel
	case EventRateLimitTriggered, EventNotificationFailed:
		level = zapcore.WarnLevel
	case EventUnauthorizedAccess, EventPersistenceFailed:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)

	if persisted(event.Event) {
		sl.enqueue(event)
	}
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogUnauthorizedAccess logs a rejected admin request.
func (sl *SecurityLogger) LogUnauthorizedAccess(ctx context.Context, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:       EventUnauthorizedAccess,
		SubjectType: "ip",
		IP:          ip,
		UserAgent:   userAgent,
		RequestID:   requestID,
		Details:     map[string]interface{}{"reason": reason},
	})
}

// LogValidationFailed logs a rejected submission. Only field names are recorded.
func (sl *SecurityLogger) LogValidationFailed(ctx context.Context, missing []string) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventValidationFailed,
		Details: map[string]interface{}{"missing_fields": missing},
	})
}

// LogPersistenceFailed logs a submission that could not be stored.
func (sl *SecurityLogger) LogPersistenceFailed(ctx context.Context, email string, err error) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventPersistenceFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		Details:      map[string]interface{}{"error": err.Error()},
	})
}

// LogNotificationFailed logs a saved submission whose email was not delivered.
func (sl *SecurityLogger) LogNotificationFailed(ctx context.Context, submissionID string, err error) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventNotificationFailed,
		SubjectType:  "submission_id",
		SubjectValue: submissionID,
		Details:      map[string]interface{}{"error": err.Error()},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// Close stops accepting events for persistence, waits for queued ones to be
// written, then flushes the log.
func (sl *SecurityLogger) Close() error {
	sl.mu.Lock()
	if sl.queue != nil && !sl.closed {
		sl.closed = true
		close(sl.queue)
	}
	sl.mu.Unlock()

	if sl.done != nil {
		<-sl.done
	}
	return sl.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := strings.IndexByte(email, '@')
	if atIndex < 0 {
		return HashValue(email)
	}
	if atIndex <= 1 {
		return "***" + email[atIndex:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
