package repository

import (
	"time"

	"bodega-pos/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.UserProfile, error)
	FindByID(id string) (*model.UserProfile, error)
	Create(user *model.UserProfile) error
	Update(user *model.UserProfile) error
	Delete(id string) error
	UpdatePassword(userID string, hashedPassword string) error
	FindAll() ([]model.UserProfile, error)
	CountByRole(role model.Role) (int64, error)
	UpdateTokenVersion(userID string, version string) error
	UpdateLastSeen(userID string) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(email string) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, ErrInUse)
	}
	return &user, nil
}

func (r *userRepo) FindByID(id string) (*model.UserProfile, error) {
	var user model.UserProfile
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, ErrInUse)
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.UserProfile) error {
	return translate(r.db.Create(user).Error, ErrInUse)
}

func (r *userRepo) Update(user *model.UserProfile) error {
	return translate(r.db.Save(user).Error, ErrInUse)
}

func (r *userRepo) UpdatePassword(userID string, hashedPassword string) error {
	return r.db.Model(&model.UserProfile{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

// Delete fails with ErrInUse while the user is the operator of any transaction
func (r *userRepo) Delete(id string) error {
	for _, header := range []interface{}{&model.SaleHeader{}, &model.PurchaseHeader{}} {
		var refs int64
		if err := r.db.Model(header).Where("operator_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
	}
	res := r.db.Delete(&model.UserProfile{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, ErrInUse)
	}
	if res.RowsAffected == 0 {
		return notFound("user", id)
	}
	return nil
}

func (r *userRepo) FindAll() ([]model.UserProfile, error) {
	var users []model.UserProfile
	if err := r.db.Order("first_name ASC, last_name ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) CountByRole(role model.Role) (int64, error) {
	var count int64
	err := r.db.Model(&model.UserProfile{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepo) UpdateTokenVersion(userID string, version string) error {
	return r.db.Model(&model.UserProfile{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(userID string) error {
	return r.db.Model(&model.UserProfile{}).Where("id = ?", userID).Update("last_seen_at", time.Now()).Error
}
