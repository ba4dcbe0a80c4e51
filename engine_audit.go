package scitokens

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/djw8605/xrootd-scitokens/privilege"
)

const (
	auditEventTokenValidated     = "token_validated"
	auditEventValidationFailed   = "validation_failed"
	auditEventAuthorizeGranted   = "authorize_granted"
	auditEventAuthorizeDelegated = "authorize_delegated"
	auditEventAuthorizeDenied    = "authorize_denied"
	auditEventIdentityAssigned   = "identity_assigned"
	auditEventCacheSweep         = "cache_sweep"
	auditEventConfigReloaded     = "config_reloaded"
	auditEventConfigRejected     = "config_rejected"
)

// newAuditEvent stamps the shared fields. Only called after the nil-audit
// gate, so disabled audit costs no allocations on the hot path.
func newAuditEvent(eventType string, success bool) AuditEvent {
	return AuditEvent{
		Timestamp: time.Now().UTC(),
		EventID:   uuid.NewString(),
		EventType: eventType,
		Success:   success,
	}
}

func (e *Engine) emitDecision(ctx context.Context, eventType string, ent *Entity, op privilege.Operation, path string, mask privilege.Mask, success bool, reason string) {
	if e == nil || e.audit == nil {
		return
	}

	event := newAuditEvent(eventType, success)
	event.Subject = entName(ent)
	event.Host = entHost(ent)
	event.Path = path
	event.Operation = op.String()
	event.Privilege = mask.String()
	if reason != "" {
		event.Metadata = map[string]string{"reason": reason}
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) emitValidation(ctx context.Context, ent *Entity, identity string, success bool, err error) {
	if e == nil || e.audit == nil {
		return
	}

	eventType := auditEventTokenValidated
	if !success {
		eventType = auditEventValidationFailed
	}

	event := newAuditEvent(eventType, success)
	event.Subject = identity
	event.Host = entHost(ent)
	if err != nil {
		event.Error = err.Error()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) emitIdentity(ctx context.Context, ent *Entity) {
	if e == nil || e.audit == nil {
		return
	}

	event := newAuditEvent(auditEventIdentityAssigned, true)
	event.Subject = entName(ent)
	event.Host = entHost(ent)
	e.audit.Emit(ctx, event)
}

func (e *Engine) emitSweep(ctx context.Context, evicted uint64, remaining int) {
	if e == nil || e.audit == nil {
		return
	}

	event := newAuditEvent(auditEventCacheSweep, true)
	event.Metadata = map[string]string{
		"evicted":   strconv.FormatUint(evicted, 10),
		"remaining": strconv.Itoa(remaining),
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) emitConfig(ctx context.Context, audienceCount int, err error) {
	if e == nil || e.audit == nil {
		return
	}

	eventType := auditEventConfigReloaded
	if err != nil {
		eventType = auditEventConfigRejected
	}

	event := newAuditEvent(eventType, err == nil)
	if err != nil {
		event.Error = err.Error()
	} else {
		event.Metadata = map[string]string{
			"audiences": strconv.Itoa(audienceCount),
		}
	}
	e.audit.Emit(ctx, event)
}

func entName(ent *Entity) string {
	if ent == nil {
		return ""
	}
	return ent.Name
}

func entHost(ent *Entity) string {
	if ent == nil {
		return ""
	}
	return ent.Host
}
