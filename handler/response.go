package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docchat-io/docchat-be/types"
)

func sendError(c *gin.Context, err error) {
	status := types.HTTPStatus(err)
	message := err.Error()
	if status >= 500 {
		message = types.PublicMessage(err)
	}
	c.JSON(status, types.DataResponse{
		Status:  "error",
		Code:    types.ErrorCode(err),
		Message: message,
	})
}

func sendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, types.DataResponse{
		Status: "success",
		Data:   data,
	})
}
