package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/utils"
)

// RegisterInput is a sign-up request. Admin and confirmation flags are never taken from it.
type RegisterInput struct {
	UserID        string `json:"user_id" binding:"required"`
	Password      string `json:"password" binding:"required"`
	UserName      string `json:"user_name" binding:"required"`
	AdmissionYear int    `json:"admission_year"`
	Grade         int    `json:"grade"`
	ClassNum      int    `json:"class_num"`
	StudentNum    int    `json:"student_num"`
	PhoneNumber   string `json:"phone_number" binding:"required"`
}

// UserUpdate carries profile changes. Nil fields are left alone.
type UserUpdate struct {
	Password      *string `json:"password"`
	UserName      *string `json:"user_name"`
	AdmissionYear *int    `json:"admission_year"`
	Grade         *int    `json:"grade"`
	ClassNum      *int    `json:"class_num"`
	StudentNum    *int    `json:"student_num"`
	PhoneNumber   *string `json:"phone_number"`
}

// UserService manages accounts and is the UserDirectory for the boards.
type UserService struct {
	db       *gorm.DB
	adminIDs map[string]bool
	log      *zap.Logger
}

// NewUserService treats every id in adminIDs as an admin regardless of the stored flag.
func NewUserService(db *gorm.DB, adminIDs []string, log *zap.Logger) *UserService {
	ids := make(map[string]bool, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids[id] = true
		}
	}
	return &UserService{db: db, adminIDs: ids, log: log}
}

// Lookup returns nil, nil when id is unknown.
func (s *UserService) Lookup(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, nil
	}
	var u models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IsAdmin reports the stored flag or membership in the configured admin ids.
func (s *UserService) IsAdmin(u *models.User) bool {
	if u == nil {
		return false
	}
	return u.IsAdmin || s.adminIDs[u.UserID]
}

// Register creates an unconfirmed, non-admin account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.UserName = utils.SanitizeText(in.UserName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	switch {
	case in.UserID == "" || len(in.UserID) > 50:
		return nil, validationError("user_id must be 1 to 50 characters")
	case in.UserName == "":
		return nil, validationError("user_name is required")
	case in.PhoneNumber == "":
		return nil, validationError("phone_number is required")
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return nil, validationError("%v", err)
	}

	if err := s.checkUnique(ctx, "user_id", in.UserID, ""); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, "phone_number", in.PhoneNumber, ""); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, storageError("failed to hash password", err)
	}
	u := models.User{
		UserID:        in.UserID,
		PasswordHash:  hash,
		UserName:      in.UserName,
		AdmissionYear: in.AdmissionYear,
		Grade:         in.Grade,
		ClassNum:      in.ClassNum,
		StudentNum:    in.StudentNum,
		PhoneNumber:   in.PhoneNumber,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, storageError("failed to create user", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.UserID))
	return &u, nil
}

// Get returns one user or a NotFound error.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, storageError("failed to load user", err)
	}
	if u == nil {
		return nil, notFoundError("user")
	}
	return u, nil
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, s.db.WithContext(ctx))
}

// ListPending returns users still waiting for approval.
func (s *UserService) ListPending(ctx context.Context) ([]models.User, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("is_confirmed = ?", false))
}

func (s *UserService) list(_ context.Context, q *gorm.DB) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, storageError("failed to list users", err)
	}
	return users, nil
}

// Update changes the profile of id. Only the user themself or an admin may do it.
func (s *UserService) Update(ctx context.Context, actorID, id string, in UserUpdate) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireSelfOrAdmin(ctx, actorID, id); err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if in.Password != nil {
		if err := utils.ValidatePassword(*in.Password); err != nil {
			return nil, validationError("%v", err)
		}
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, storageError("failed to hash password", err)
		}
		updates["password_hash"] = hash
	}
	if in.UserName != nil {
		name := utils.SanitizeText(*in.UserName)
		if name == "" {
			return nil, validationError("user_name is required")
		}
		updates["user_name"] = name
	}
	if in.PhoneNumber != nil {
		phone := strings.TrimSpace(*in.PhoneNumber)
		if phone == "" {
			return nil, validationError("phone_number is required")
		}
		if phone != u.PhoneNumber {
			if err := s.checkUnique(ctx, "phone_number", phone, id); err != nil {
				return nil, err
			}
		}
		updates["phone_number"] = phone
	}
	if in.AdmissionYear != nil {
		updates["admission_year"] = *in.AdmissionYear
	}
	if in.Grade != nil {
		updates["grade"] = *in.Grade
	}
	if in.ClassNum != nil {
		updates["class_num"] = *in.ClassNum
	}
	if in.StudentNum != nil {
		updates["student_num"] = *in.StudentNum
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(updates).Error; err != nil {
		return nil, storageError("failed to update user", err)
	}
	return s.Get(ctx, id)
}

// Approve confirms id and sets its admin flag. actorID must be an admin.
func (s *UserService) Approve(ctx context.Context, actorID, id string, isAdmin bool) (*models.User, error) {
	actor, err := s.Lookup(ctx, actorID)
	if err != nil {
		return nil, storageError("failed to look up user", err)
	}
	if !s.IsAdmin(actor) {
		return nil, authorizationError("admin privileges required")
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(map[string]any{
		"is_confirmed": true,
		"is_admin":     isAdmin,
	}).Error; err != nil {
		return nil, storageError("failed to approve user", err)
	}
	s.log.Info("user approved", zap.String("user_id", id), zap.String("by", actorID), zap.Bool("is_admin", isAdmin))
	return s.Get(ctx, id)
}

// Delete removes id. Posts and comments by the user are kept.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.requireSelfOrAdmin(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).Delete(&models.User{}).Error; err != nil {
		return storageError("failed to delete user", err)
	}
	s.log.Info("user deleted", zap.String("user_id", id), zap.String("by", actorID))
	return nil
}

// Authenticate checks the password. Wrong credentials give ErrInvalidCredentials,
// an unapproved account gives an authorization error.
func (s *UserService) Authenticate(ctx context.Context, id, password string) (*models.User, error) {
	u, err := s.Lookup(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, storageError("failed to look up user", err)
	}
	if u == nil || !utils.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsConfirmed && !s.adminIDs[u.UserID] {
		return nil, authorizationError("account is waiting for admin approval")
	}
	return u, nil
}

// EnsureAdmins confirms and flags the given ids when they exist. Unknown ids are skipped.
func (s *UserService) EnsureAdmins(ctx context.Context, ids []string) error {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).
			Updates(map[string]any{"is_admin": true, "is_confirmed": true})
		if res.Error != nil {
			return storageError("failed to promote admin", res.Error)
		}
		if res.RowsAffected == 0 {
			s.log.Warn("configured admin id has no account yet", zap.String("user_id", id))
		}
	}
	return nil
}

// CountAll returns total and unconfirmed account counts.
func (s *UserService) CountAll(ctx context.Context) (total, pending int64, err error) {
	if err = s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return
	}
	err = s.db.WithContext(ctx).Model(&models.User{}).Where("is_confirmed = ?", false).Count(&pending).Error
	return
}

func (s *UserService) requireSelfOrAdmin(ctx context.Context, actorID, id string) error {
	if actorID != "" && actorID == id {
		return nil
	}
	actor, err := s.Lookup(ctx, actorID)
	if err != nil {
		return storageError("failed to look up user", err)
	}
	if !s.IsAdmin(actor) {
		return authorizationError("only the account owner or an admin may do this")
	}
	return nil
}

func (s *UserService) checkUnique(ctx context.Context, column, value, exceptID string) error {
	q := s.db.WithContext(ctx).Model(&models.User{}).Where(column+" = ?", value)
	if exceptID != "" {
		q = q.Where("user_id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return storageError("failed to check "+column, err)
	}
	if n > 0 {
		return validationError("%s already registered", column)
	}
	return nil
}
