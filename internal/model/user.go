package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// LearnerType 学习者分类，决定路径过滤与可用的替代路线
type LearnerType string

const (
	LearnerFirstTime LearnerType = "first-time"
	LearnerRefresher LearnerType = "refresher"
)

// swagger:model User
type User struct {
	BaseModel
	Name        string      `gorm:"size:100;not null" json:"name"`
	Email       string      `gorm:"size:100;unique;not null" json:"email"`
	Password    string      `gorm:"size:100;not null" json:"-"`
	Role        UserRole    `gorm:"type:enum('student','teacher','admin');default:'student'" json:"role"`
	LearnerType LearnerType `gorm:"type:enum('first-time','refresher');default:'first-time'" json:"learnerType"`
	Language    string      `gorm:"size:10;default:'en'" json:"language"`
	Avatar      string      `gorm:"size:255" json:"avatar"`
	Disabled    bool        `gorm:"default:false" json:"disabled"`
	LastLogin   time.Time   `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen    time.Time   `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
