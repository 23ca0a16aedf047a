package controllers

import (
	"net/http"

	"dmc-inventory/apperr"
	"dmc-inventory/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the single operator account from the configuration.
func (h *Handler) Login(c *gin.Context) {
	if !h.Auth.Enabled() || h.Auth.AdminPasswordHash == "" {
		utils.Fail(c, "login unavailable", apperr.Unsupported("authentication is not configured"))
		return
	}

	var in LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "invalid login payload", err)
		return
	}

	if in.Username != h.Auth.AdminUsername ||
		bcrypt.CompareHashAndPassword([]byte(h.Auth.AdminPasswordHash), []byte(in.Password)) != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "wrong username or password"})
		return
	}

	now := h.Now()
	token, err := utils.GenerateToken([]byte(h.Auth.Secret), in.Username, h.Auth.TokenTTL, now)
	if err != nil {
		utils.Fail(c, "could not issue token", err)
		return
	}
	h.Log.Printf("auth: %s logged in", in.Username)
	utils.Success(c, "login ok", gin.H{
		"token":      token,
		"expires_at": now.Add(h.Auth.TokenTTL),
	})
}
