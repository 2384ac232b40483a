package middleware

import (
	"fmt"
	"log"
	"net/http"

	"github.com/marcnyamweya/TaxApi/internal/model"
	"github.com/marcnyamweya/TaxApi/internal/service"
	"github.com/marcnyamweya/TaxApi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorBoundary is the single catch point for unexpected failures anywhere
// in the request pipeline. It logs the panic, writes a best-effort
// SYSTEM_ERROR audit entry (an audit failure here is swallowed so it can
// never mask the original outage) and answers with an opaque 500 carrying
// only a correlation id.
func ErrorBoundary(audit service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID := uuid.NewString()
				log.Printf("panic recovered [%s] on %s %s: %v",
					requestID, c.Request.Method, c.Request.URL.Path, r)

				func() {
					defer func() { _ = recover() }()
					_ = audit.Record(c.Request.Context(),
						model.EventSystemError, model.ActionUnhandledError, "System", nil,
						fmt.Sprintf("%v | Path: %s | RequestId: %s", r, c.Request.URL.Path, requestID))
				}()

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					response.Opaque(http.StatusInternalServerError, requestID))
			}
		}()
		c.Next()
	}
}
