// Package response 提供统一的 HTTP 响应包裹结构 {code, msg, data}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body 统一响应包裹
type Body struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// OK 返回 200 响应
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Code: http.StatusOK, Msg: "", Data: data})
}

// BadRequest 返回 400 响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Body{Code: http.StatusBadRequest, Msg: msg, Data: struct{}{}})
}

// NotFound 返回 404 响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Body{Code: http.StatusNotFound, Msg: msg, Data: struct{}{}})
}

// InternalError 返回 500 响应
func InternalError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, Body{Code: http.StatusInternalServerError, Msg: msg, Data: struct{}{}})
}
