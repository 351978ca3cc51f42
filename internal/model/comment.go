package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment 电影评论，仅作者本人可删除
type Comment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Content   string    `gorm:"type:text;not null;comment:评论内容"`
	MovieID   int       `gorm:"not null;index;comment:电影ID"`
	UserID    string    `gorm:"type:varchar(36);not null;index;comment:作者ID"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`

	User  User  `gorm:"foreignKey:UserID"`
	Movie Movie `gorm:"foreignKey:MovieID"`
}

func (Comment) TableName() string { return "comment" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
