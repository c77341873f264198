package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: msg, Data: data})
}

func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Msg: msg, Data: data})
}

// Error writes an error envelope with an explicit HTTP status and business code.
func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, Response{Code: code, Msg: msg})
}

// Fail translates err into the status/code pair of its kind. Anything that is not
// an *AppError is reported as a generic server error and logged.
func Fail(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		Error(c, http.StatusInternalServerError, CodeServer, "internal server error")
		return
	}
	if appErr.Kind == KindServer {
		log.Error().Err(appErr.Err).Str("path", c.FullPath()).Msg(appErr.Msg)
	}
	Error(c, appErr.Kind.HTTPStatus(), appErr.Kind.Code(), appErr.Msg)
}

// Abort is Fail for middlewares.
func Abort(c *gin.Context, err error) {
	Fail(c, err)
	c.Abort()
}
