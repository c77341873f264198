package controllers

import (
	"strconv"

	"Hacknox/middlewares"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON binds the body and writes a validation error on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.Fail(c, utils.NewValidation("invalid request parameters: "+err.Error()))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uint32, bool) {
	id, err := middlewares.ParseID(c.Param(name))
	if err != nil {
		utils.Fail(c, utils.NewValidation("invalid "+name))
		return 0, false
	}
	return id, true
}

func pathID64(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Fail(c, utils.NewValidation("invalid "+name))
		return 0, false
	}
	return id, true
}

// hackathonID returns the hackathon resolved by the scope middleware. Routes
// without a scope middleware that need one answer with a validation error.
func hackathonID(c *gin.Context) (uint32, bool) {
	id, ok := middlewares.HackathonID(c)
	if !ok {
		utils.Fail(c, utils.NewValidation("hackathon_id is required"))
	}
	return id, ok
}
