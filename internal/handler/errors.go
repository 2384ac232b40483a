package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/marcnyamweya/TaxApi/pkg/apperr"
	"github.com/marcnyamweya/TaxApi/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an unexpected failure: it is logged with a
// correlation id and answered opaquely, no internal detail leaked.
func respondError(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, response.ValidationFailed(http.StatusBadRequest, validationErr.Errors))
		return
	}

	var notFoundErr *apperr.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, notFoundErr.Error()))
		return
	}

	var conflictErr *apperr.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, conflictErr.Error()))
		return
	}

	var transitionErr *apperr.IllegalTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusBadRequest, response.ErrorWithData(http.StatusBadRequest, transitionErr.Error(), gin.H{
			"current": transitionErr.Current,
			"allowed": transitionErr.Allowed,
		}))
		return
	}

	requestID := uuid.NewString()
	log.Printf("unexpected error [%s] on %s %s: %v", requestID, c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, response.Opaque(http.StatusInternalServerError, requestID))
}
