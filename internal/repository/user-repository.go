package repository

import (
	"errors"
	"log"

	"github.com/TuanPhatt/shipment_service/internal/domain"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByUsername(username string) (*domain.User, error)
	Upsert(user *domain.User) error
	ListAll() ([]domain.User, error)
	Delete(username string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	user := &domain.User{}

	if err := r.db.First(user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Entity: "user", Key: username}
		}
		log.Printf("find user error: %v", err)
		return nil, errors.New("failed to find user")
	}

	return user, nil
}

func (r *userRepository) Upsert(user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}

	if err := r.db.Save(user).Error; err != nil {
		log.Printf("upsert user error: %v", err)
		return errors.New("failed to save user")
	}
	return nil
}

func (r *userRepository) ListAll() ([]domain.User, error) {
	var users []domain.User
	if err := r.db.Order("username ASC").Find(&users).Error; err != nil {
		log.Printf("list users error: %v", err)
		return nil, errors.New("failed to list users")
	}
	return users, nil
}

func (r *userRepository) Delete(username string) error {
	res := r.db.Delete(&domain.User{}, "username = ?", username)
	if res.Error != nil {
		log.Printf("delete user error: %v", res.Error)
		return errors.New("failed to delete user")
	}
	if res.RowsAffected == 0 {
		return NotFoundError{Entity: "user", Key: username}
	}
	return nil
}
