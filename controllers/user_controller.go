package controllers

import (
	"net/http"
	"time"

	"Hacknox/dto"
	"Hacknox/mappers"
	"Hacknox/middlewares"
	"Hacknox/services"
	"Hacknox/utils"

	"github.com/gin-gonic/gin"
)

var session = struct {
	Domain string
	Secure bool
}{}

// ConfigureSession sets the attributes of the session cookie.
func ConfigureSession(domain string, secure bool) {
	session.Domain = domain
	session.Secure = secure
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, token, maxAge, "/", session.Domain, session.Secure, true)
}

func Signup(c *gin.Context) {
	var req dto.SignupReq
	if !bindJSON(c, &req) {
		return
	}
	user, err := services.Signup(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, "Account created, check your email to verify it", mappers.MapUserToResp(*user))
}

func VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailReq
	if !bindJSON(c, &req) {
		return
	}
	if err := services.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Email verified", nil)
}

func ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationReq
	if !bindJSON(c, &req) {
		return
	}
	if err := services.ResendVerification(c.Request.Context(), req.Email); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "If the address is registered and unverified, a new link has been sent", nil)
}

func Login(c *gin.Context) {
	var req dto.LoginReq
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := services.Login(c.Request.Context(), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	setSessionCookie(c, token, int(utils.TokenTTL().Seconds()))
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user":  mappers.MapUserToResp(*user),
	})
}

func Logout(c *gin.Context) {
	tokenID := c.GetString("token_id")
	exp, _ := c.Get("token_exp")
	expiresAt, _ := exp.(time.Time)
	if err := services.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		utils.Fail(c, err)
		return
	}
	setSessionCookie(c, "", -1)
	utils.Success(c, "Logged out", nil)
}

func GetMe(c *gin.Context) {
	user, err := services.GetUser(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Fetched profile", mappers.MapUserToResp(*user))
}

func EditProfile(c *gin.Context) {
	var req dto.EditProfileReq
	if !bindJSON(c, &req) {
		return
	}
	user, err := services.UpdateProfile(c.Request.Context(), middlewares.CurrentUserID(c), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Profile updated", mappers.MapUserToResp(*user))
}

func ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordReq
	if !bindJSON(c, &req) {
		return
	}
	if err := services.ChangePassword(c.Request.Context(), middlewares.CurrentUserID(c), req); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Password changed", nil)
}

func UpdateEmailPreferences(c *gin.Context) {
	var req dto.EmailPreferencesReq
	if !bindJSON(c, &req) {
		return
	}
	user, err := services.UpdateEmailPreferences(c.Request.Context(), middlewares.CurrentUserID(c), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, "Email preferences updated", mappers.MapUserToResp(*user))
}
