package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DocumentStatusPending = "PENDING"
	DocumentStatusIndexed = "INDEXED"
	DocumentStatusFailed  = "FAILED"
)

type Document struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"` // Ownership for data isolation
	Title       string         `gorm:"type:text;not null"`
	Filename    string         `gorm:"type:text;not null"`
	ContentType string         `gorm:"type:varchar(100)"`
	StoragePath string         `gorm:"type:text"`
	Status      string         `gorm:"type:varchar(20);default:'PENDING'"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
