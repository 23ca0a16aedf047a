package utils

import (
	"errors"
	"net/http"

	"dmc-inventory/apperr"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"data":    data,
	})
}

// Fail renders err with the status that matches its kind.
func Fail(c *gin.Context, message string, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Storage(err, message)
	}
	c.AbortWithStatusJSON(StatusOf(e.Kind), gin.H{
		"message": message,
		"error":   e,
	})
}

// BadRequest is for malformed input caught before any service call.
func BadRequest(c *gin.Context, message string, err error) {
	e := apperr.Validation("%s", message)
	if err != nil {
		e.Detail = err.Error()
	}
	Fail(c, message, e)
}

func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindReference, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
