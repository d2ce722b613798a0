package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cleanease/internal/service"
)

// UserHandler mantiene dependencias para endpoints de cuentas y OTP.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	authServ *service.AuthService
	policy   PasswordPolicy
	errs     *ErrorWriter
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	authServ *service.AuthService,
	policy PasswordPolicy,
	errs *ErrorWriter,
) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		authServ: authServ,
		policy:   policy,
		errs:     errs,
	}
}

// Register maneja POST /register.
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Username string `json:"username" binding:"required,username"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,strongpassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}
	if err := h.policy.Check(req.Password); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	user, err := h.userServ.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "User registered successfully.", "user": user})
}

// Login maneja POST /login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	res, err := h.userServ.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":       "Login Successful!",
		"username":  res.Username,
		"userId":    res.UserID,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}

// Authenticate maneja POST /authenticate; RequireAuth ya validó el token
// y aquí se confirma que la cuenta sigue existiendo.
func (h *UserHandler) Authenticate(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		h.errs.Status(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	user, err := h.userServ.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": user.ID, "username": user.Username})
}

// GetUser maneja GET /user/:username.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userServ.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.errs.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterMail maneja POST /registermail: emite y envía el OTP.
func (h *UserHandler) RegisterMail(c *gin.Context) {
	var req struct {
		Email  string     `json:"email" binding:"required,email"`
		UserID flexString `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	delivery, err := h.authServ.IssueOTP(c.Request.Context(), req.Email, req.UserID.String())
	if err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "OTP sent to your email", "expiresAt": delivery.ExpiresAt})
}

// VerifyOTP maneja POST /otpvalidation.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		UserID flexString `json:"userId" binding:"required"`
		OTP    flexString `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}
	if !service.IsValidOTPCode(req.OTP.String()) {
		h.errs.Status(c, http.StatusBadRequest, "OTP must be 6 digits")
		return
	}

	if err := h.authServ.VerifyOTP(c.Request.Context(), req.UserID.String(), req.OTP.String()); err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "OTP verified!"})
}

// ResetPassword maneja PATCH /resetPassword. La contraseña se valida antes de consumir la sesión.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Username string     `json:"username" binding:"required"`
		Password string     `json:"password" binding:"required,strongpassword"`
		UserID   flexString `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.Invalid(c, err)
		return
	}
	if err := h.policy.Check(req.Password); err != nil {
		h.errs.Invalid(c, err)
		return
	}

	if err := h.authServ.ResetPassword(c.Request.Context(), req.Username, req.Password, req.UserID.String()); err != nil {
		h.errs.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Password updated successfully!"})
}
