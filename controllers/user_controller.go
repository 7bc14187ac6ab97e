package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// UserController handles account registration and administration.
type UserController struct {
	users *services.UserService
}

// NewUserController creates a new UserController instance.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register creates an account that an admin must approve before login.
func (u *UserController) Register(ctx *gin.Context) {
	ip := ctx.ClientIP()
	if !utils.RegistrationCooldownTry(ctx.Request.Context(), ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42902, "too many registration attempts, slow down")
		return
	}
	if !utils.RegistrationDailyLimitCheck(ctx.Request.Context(), ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42903, "daily registration limit reached")
		return
	}

	var req services.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid request payload")
		return
	}
	user, err := u.users.Register(ctx.Request.Context(), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.RegistrationDailyIncrement(ctx.Request.Context(), ip)
	utils.Created(ctx, u.view(user))
}

// List returns every user.
func (u *UserController) List(ctx *gin.Context) {
	users, err := u.users.List(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": u.views(users)})
}

// ListPending returns users waiting for approval.
func (u *UserController) ListPending(ctx *gin.Context) {
	users, err := u.users.ListPending(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": u.views(users)})
}

// Get returns one user.
func (u *UserController) Get(ctx *gin.Context) {
	user, err := u.users.Get(ctx.Request.Context(), strings.TrimSpace(ctx.Param("id")))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, u.view(user))
}

// Update changes profile fields of the caller, or of anyone when the caller is an admin.
func (u *UserController) Update(ctx *gin.Context) {
	actorID, ok := getUserID(ctx)
	if !ok {
		return
	}
	var req services.UserUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}
	user, err := u.users.Update(ctx.Request.Context(), actorID, strings.TrimSpace(ctx.Param("id")), req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, u.view(user))
}

// Approve confirms an account. Body: {"is_admin": bool}, missing means false.
func (u *UserController) Approve(ctx *gin.Context) {
	actorID, ok := getUserID(ctx)
	if !ok {
		return
	}
	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
			return
		}
	}
	user, err := u.users.Approve(ctx.Request.Context(), actorID, strings.TrimSpace(ctx.Param("id")), req.IsAdmin)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, u.view(user))
}

// Delete removes an account. Its posts and comments stay.
func (u *UserController) Delete(ctx *gin.Context) {
	actorID, ok := getUserID(ctx)
	if !ok {
		return
	}
	if err := u.users.Delete(ctx.Request.Context(), actorID, strings.TrimSpace(ctx.Param("id"))); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// view reports the effective admin flag, including configured admin ids.
func (u *UserController) view(user *models.User) gin.H {
	return gin.H{
		"user_id":        user.UserID,
		"user_name":      user.UserName,
		"admission_year": user.AdmissionYear,
		"grade":          user.Grade,
		"class_num":      user.ClassNum,
		"student_num":    user.StudentNum,
		"phone_number":   user.PhoneNumber,
		"is_admin":       u.users.IsAdmin(user),
		"is_confirmed":   user.IsConfirmed,
		"created_at":     user.CreatedAt,
	}
}

func (u *UserController) views(users []models.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, u.view(&users[i]))
	}
	return out
}
