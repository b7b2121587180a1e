// internal/audit/audit.go
//
// Append-only audit recorder.
//
// Context
// -------
// Every auth event and content mutation emits one immutable audit row:
// who (principal kind + id), what (action tag + detail payload), where
// (tenant, client IP, country), when.  Compliance views consume the
// table read-only; the core never updates or deletes rows.
//
// Audit writes are strictly best-effort: a failed insert is logged and
// counted, and the triggering request still succeeds.  The mutation
// already happened; refusing to acknowledge it would only desync the
// caller.
package audit

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/latticecms/lattice/internal/metrics"
	"github.com/latticecms/lattice/internal/requestinfo"
)

// Action tags.  Dot-scoped by subsystem so compliance queries can
// prefix-match.
const (
	ActionCentralLogin       = "central.login"
	ActionCentralLoginFailed = "central.login.failed"
	ActionCentralRegister    = "central.register"
	ActionCentralRoleChange  = "central.role.change"
	ActionSiteLogin          = "site.login"
	ActionSiteLoginFailed    = "site.login.failed"
	ActionSiteLockout        = "site.lockout"
	ActionPasswordChange     = "site.password.change"
	ActionCredentialIssue    = "credential.upsert"
	ActionTenantCreate       = "tenant.create"
	ActionTenantDelete       = "tenant.delete"
	ActionPageCreate         = "page.create"
	ActionPagePublish        = "page.publish"
	ActionPageDelete         = "page.delete"
	ActionSectionCreate      = "section.create"
	ActionSectionUpdate      = "section.update"
	ActionSectionDelete      = "section.delete"
)

// Entry is one event as supplied by a handler.  TenantID is nil for
// global actions (central login, tenant creation).
type Entry struct {
	TenantID  *int64
	ActorKind string // "central" | "site" | "anonymous"
	ActorID   int64  // zero for anonymous (failed logins)
	Action    string
	Detail    map[string]any
}

// Recorder persists entries.  Safe for concurrent use.
type Recorder struct {
	db *sqlx.DB
}

// NewRecorder wraps the shared pool.
func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db}
}

// Record enriches the entry with request metadata (client IP, country,
// UA summary) when available and inserts it.  Failures are swallowed
// after logging; see the package comment.
func (rec *Recorder) Record(ctx context.Context, e Entry) {
	detail := e.Detail
	if detail == nil {
		detail = map[string]any{}
	}

	var ip, country string
	if info := requestinfo.FromContext(ctx); info != nil {
		if info.Geo.IP != nil {
			ip = info.Geo.IP.String()
		}
		country = info.Geo.CountryISO
		detail["ua"] = info.UA.Summary()
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		zap.S().Errorw("audit detail marshal", "action", e.Action, "err", err)
		payload = []byte("{}")
	}

	const q = `
        INSERT INTO audit_log
               (tenant_id, actor_kind, actor_id, action, detail, ip, country)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := rec.db.ExecContext(ctx, q,
		e.TenantID, e.ActorKind, e.ActorID, e.Action, payload, ip, country); err != nil {
		metrics.AuditWriteErrorsTotal.Inc()
		zap.S().Errorw("audit write failed", "action", e.Action, "err", err)
	}
}
