package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standard JSON envelope, grounded on
// wallet-core-version-autoMigrate's handler/response package.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

func success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, Response{Code: 0, Message: "ok", Data: data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, Response{Code: status, Message: err.Error(), Data: gin.H{}})
}
