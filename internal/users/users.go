// Package users stores people, their roles and the permissions granted to
// those roles. It models the data only; nothing here enforces access.
package users

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/shamba/internal/apperr"
	"github.com/zulandar/shamba/internal/models"
	"github.com/zulandar/shamba/internal/schema"
	"gorm.io/gorm"
)

// lockedHash is stored for accounts that have no usable password.
const lockedHash = "!"

var userSchema = schema.Entity{
	Name: "user",
	Fields: []schema.Field{
		{Name: "first_name", Kind: schema.String, Required: true, MaxLen: 50},
		{Name: "last_name", Kind: schema.String, Required: true, MaxLen: 50},
		{Name: "phone", Kind: schema.String, MaxLen: 20},
		{Name: "hire_date", Kind: schema.Time},
		{Name: "role_id", Kind: schema.Ref},
		{Name: "email", Kind: schema.String, Required: true, MaxLen: 100},
		{Name: "password", Kind: schema.String, Required: true},
	},
}

var mutableUserSchema = schema.Entity{
	Name:   "user",
	Fields: userSchema.Fields[:5],
}

// CreateOpts holds parameters for registering a user.
type CreateOpts struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	RoleID    *uint
	HireDate  *time.Time
}

// UpdateOpts lists the mutable profile fields. Email is the login identity
// and does not change here.
type UpdateOpts struct {
	FirstName *string
	LastName  *string
	Phone     *string
	HireDate  *time.Time
	RoleID    *uint
	IsActive  *bool
}

// NormalizeEmail lowercases and trims an address; emails are unique
// regardless of case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a user, hashing the password with h.
func Create(db *gorm.DB, h Hasher, opts CreateOpts) (*models.User, error) {
	if err := userSchema.Validate(schema.Values{
		"first_name": opts.FirstName,
		"last_name":  opts.LastName,
		"phone":      opts.Phone,
		"hire_date":  opts.HireDate,
		"role_id":    opts.RoleID,
		"email":      opts.Email,
		"password":   opts.Password,
	}); err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}
	email := NormalizeEmail(opts.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("users: create: %w", apperr.Invalid("user", "email", "must be an email address"))
	}
	hash, err := h.Hash(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}

	u := models.User{
		FirstName:    strings.TrimSpace(opts.FirstName),
		LastName:     strings.TrimSpace(opts.LastName),
		Email:        email,
		Phone:        opts.Phone,
		PasswordHash: hash,
		RoleID:       opts.RoleID,
		IsActive:     true,
		HireDate:     opts.HireDate,
	}
	if err := insert(db, &u); err != nil {
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return &u, nil
}

func insert(db *gorm.DB, u *models.User) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return apperr.Persistence("user email lookup", err)
		}
		if count > 0 {
			return apperr.Invalid("user", "email", fmt.Sprintf("%q is already registered", u.Email))
		}
		if u.RoleID != nil {
			if _, err := GetRole(tx, *u.RoleID); err != nil {
				return err
			}
		}
		if err := tx.Create(u).Error; err != nil {
			return apperr.Persistence("user create", err)
		}
		return nil
	})
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, fmt.Errorf("users: get %d: %w", id, apperr.Storage("user get", "user", id, err))
	}
	return &u, nil
}

// GetByEmail retrieves a user by email, ignoring case.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	var u models.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, fmt.Errorf("users: get %s: %w", email, apperr.Storage("user get", "user", email, err))
	}
	return &u, nil
}

// List returns users ordered by id; activeOnly drops deactivated accounts.
func List(db *gorm.DB, activeOnly bool) ([]models.User, error) {
	q := db.Model(&models.User{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.User
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("users: list: %w", apperr.Persistence("user list", err))
	}
	return out, nil
}

// Update changes profile fields.
func Update(db *gorm.DB, id uint, opts UpdateOpts) (*models.User, error) {
	values := schema.Values{}
	updates := map[string]interface{}{}
	set := func(key string, v interface{}) {
		values[key] = v
		updates[key] = v
	}
	if opts.FirstName != nil {
		set("first_name", strings.TrimSpace(*opts.FirstName))
	}
	if opts.LastName != nil {
		set("last_name", strings.TrimSpace(*opts.LastName))
	}
	if opts.Phone != nil {
		set("phone", *opts.Phone)
	}
	if opts.HireDate != nil {
		set("hire_date", *opts.HireDate)
	}
	if opts.RoleID != nil {
		set("role_id", *opts.RoleID)
	}
	if err := mutableUserSchema.ValidatePartial(values); err != nil {
		return nil, fmt.Errorf("users: update %d: %w", id, err)
	}
	if opts.IsActive != nil {
		updates["is_active"] = *opts.IsActive
	}

	var out *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, id)
		if err != nil {
			return err
		}
		if opts.RoleID != nil {
			if _, err := GetRole(tx, *opts.RoleID); err != nil {
				return fmt.Errorf("users: update %d: %w", id, err)
			}
		}
		updates["updated_at"] = models.NextUpdate(u.UpdatedAt, time.Now())
		if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("users: update %d: %w", id, apperr.Persistence("user update", err))
		}
		out, err = Get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetPassword replaces a user's password hash.
func SetPassword(db *gorm.DB, h Hasher, id uint, password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("users: set password %d: %w", id, apperr.Invalid("user", "password", "is required"))
	}
	u, err := Get(db, id)
	if err != nil {
		return err
	}
	hash, err := h.Hash(password)
	if err != nil {
		return fmt.Errorf("users: set password %d: %w", id, err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash": hash,
		"updated_at":    models.NextUpdate(u.UpdatedAt, time.Now()),
	}).Error; err != nil {
		return fmt.Errorf("users: set password %d: %w", id, apperr.Persistence("user update", err))
	}
	return nil
}

// CheckPassword reports whether password matches the stored hash of the
// active user with the given email, and stamps LastLogin when it does.
func CheckPassword(db *gorm.DB, h Hasher, email, password string) (*models.User, bool, error) {
	u, err := GetByEmail(db, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !u.IsActive || u.PasswordHash == lockedHash || !h.Verify(u.PasswordHash, password) {
		return nil, false, nil
	}
	now := time.Now()
	if err := db.Model(&models.User{}).Where("id = ?", u.ID).Update("last_login", now).Error; err != nil {
		return nil, false, fmt.Errorf("users: check password: %w", apperr.Persistence("user login stamp", err))
	}
	u.LastLogin = &now
	return u, true, nil
}

// EnsureOperator returns the user with the given email, creating a
// password-less system account for it if none exists. Commands run on
// behalf of that account.
func EnsureOperator(db *gorm.DB, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("users: ensure operator: %w", apperr.Invalid("user", "email", "must be an email address"))
	}
	u, err := GetByEmail(db, email)
	if err == nil {
		return u, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	op := models.User{
		FirstName:    "System",
		LastName:     "Operator",
		Email:        email,
		PasswordHash: lockedHash,
		IsActive:     true,
	}
	if err := insert(db, &op); err != nil {
		return nil, fmt.Errorf("users: ensure operator: %w", err)
	}
	return &op, nil
}
