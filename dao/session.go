package dao

import (
	"errors"
	"finreport-backend/model"
	"fmt"

	"gorm.io/gorm"
)

func GetSessionByID(sessionID string) (*model.Session, error) {
	var session model.Session
	if err := DB.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return &session, nil
}

func GetSessionsByEmail(email string) ([]model.Session, error) {
	var sessions []model.Session
	if err := DB.Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return sessions, nil
}

func DeleteSession(email, sessionID string) error {
	// 删除会话
	err := DB.Where("user_email = ? AND session_id = ?", email, sessionID).
		Delete(&model.Session{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}

	// 删除会话内的对话记录
	err = DB.Where("session_id = ?", sessionID).
		Delete(&model.Message{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}

	return nil
}

func GetMessagesBySessionID(sessionID string) ([]model.Message, error) {
	var messages []model.Message
	if err := DB.Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return messages, nil
}

func UpdateSessionTitle(email, sessionID, title string) error {
	err := DB.Model(&model.Session{}).
		Where("user_email = ? AND session_id = ?", email, sessionID).
		Update("title", title).Error
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}
	return nil
}
