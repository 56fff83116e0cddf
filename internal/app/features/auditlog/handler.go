// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	"github.com/dalemusser/leadhub/internal/app/store/audit"
	"go.uber.org/zap"
)

type Handler struct {
	Audit  *audit.Store // nil when no database is configured
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs the audit trail handler.
func NewHandler(store *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:  store,
		Log:    logger,
		ErrLog: errLog,
	}
}
