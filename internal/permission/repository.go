package permission

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrGroupNotFound = errors.New("group not found")

type Repository interface {
	EnsureGroup(ctx context.Context, name string) (*Group, error)
	GetGroupByName(ctx context.Context, name string) (*Group, error)
	AddGroupPermissions(ctx context.Context, groupID uint, caps []Capability) error
	RemoveGroupPermissionsExcept(ctx context.Context, groupID uint, keep []Capability) error
	GroupPermissions(ctx context.Context, groupID uint) ([]Capability, error)
	AddUserToGroup(ctx context.Context, userID, groupID uint) error
	UserGroupNames(ctx context.Context, userID uint) ([]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) EnsureGroup(ctx context.Context, name string) (*Group, error) {
	group := Group{Name: name}
	if err := r.db.WithContext(ctx).Where(Group{Name: name}).FirstOrCreate(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) GetGroupByName(ctx context.Context, name string) (*Group, error) {
	var group Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *repository) AddGroupPermissions(ctx context.Context, groupID uint, caps []Capability) error {
	if len(caps) == 0 {
		return nil
	}
	rows := make([]GroupPermission, 0, len(caps))
	for _, c := range caps {
		rows = append(rows, GroupPermission{GroupID: groupID, Codename: string(c)})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// RemoveGroupPermissionsExcept deletes every codename of the group that is not
// in keep. An empty keep clears the group.
func (r *repository) RemoveGroupPermissionsExcept(ctx context.Context, groupID uint, keep []Capability) error {
	q := r.db.WithContext(ctx).Where("group_id = ?", groupID)
	if len(keep) > 0 {
		codenames := make([]string, 0, len(keep))
		for _, c := range keep {
			codenames = append(codenames, string(c))
		}
		q = q.Where("codename NOT IN ?", codenames)
	}
	return q.Delete(&GroupPermission{}).Error
}

func (r *repository) GroupPermissions(ctx context.Context, groupID uint) ([]Capability, error) {
	var codenames []string
	err := r.db.WithContext(ctx).
		Model(&GroupPermission{}).
		Where("group_id = ?", groupID).
		Order("codename").
		Pluck("codename", &codenames).Error
	if err != nil {
		return nil, err
	}

	caps := make([]Capability, 0, len(codenames))
	for _, c := range codenames {
		caps = append(caps, Capability(c))
	}
	return caps, nil
}

func (r *repository) AddUserToGroup(ctx context.Context, userID, groupID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&UserGroup{UserID: userID, GroupID: groupID}).Error
}

func (r *repository) UserGroupNames(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&Group{}).
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Order("groups.name").
		Pluck("groups.name", &names).Error
	return names, err
}
