package dao

import (
	"errors"
	"finreport-backend/model"
	"fmt"

	"gorm.io/gorm"
)

func CreateUser(user *model.User) error {
	if err := DB.Create(user).Error; err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}

func GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return &user, nil
}
