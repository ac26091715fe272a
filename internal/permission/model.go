package permission

import "time"

type Group struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Group) TableName() string {
	return "groups"
}

type GroupPermission struct {
	GroupID  uint   `gorm:"primaryKey"`
	Codename string `gorm:"primaryKey;size:100"`
}

func (GroupPermission) TableName() string {
	return "group_permissions"
}

type UserGroup struct {
	UserID  uint `gorm:"primaryKey"`
	GroupID uint `gorm:"primaryKey"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}
