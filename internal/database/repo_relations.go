package database

import (
	"gorm.io/gorm"
)

// AdminRelationRepo 管理权关系仓库（credential 对 host 拥有管理员权限）
type AdminRelationRepo struct {
	db *gorm.DB
}

func NewAdminRelationRepo(db *gorm.DB) *AdminRelationRepo {
	return &AdminRelationRepo{db: db}
}

// Exists 检查 (credential, host) 关系是否已存在（插入前去重）
func (r *AdminRelationRepo) Exists(credentialID, hostID uint) (bool, error) {
	var count int64
	err := r.db.Model(&AdminRelation{}).
		Where("credential_id = ? AND host_id = ?", credentialID, hostID).
		Count(&count).Error
	return count > 0, err
}

// Create 新增关系
func (r *AdminRelationRepo) Create(rel *AdminRelation) error {
	return r.db.Create(rel).Error
}

// Find 查询关系，可按 credential 或 host 过滤
func (r *AdminRelationRepo) Find(credentialID, hostID *uint) ([]AdminRelation, error) {
	q := r.db.Model(&AdminRelation{})
	if credentialID != nil {
		q = q.Where("credential_id = ?", *credentialID)
	}
	if hostID != nil {
		q = q.Where("host_id = ?", *hostID)
	}
	var rels []AdminRelation
	err := q.Order("id").Find(&rels).Error
	return rels, err
}

// DeleteByCredentials 删除引用任一凭据 ID 的关系
func (r *AdminRelationRepo) DeleteByCredentials(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("credential_id IN ?", ids).Delete(&AdminRelation{}).Error
}

// DeleteByHosts 删除引用任一主机 ID 的关系
func (r *AdminRelationRepo) DeleteByHosts(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("host_id IN ?", ids).Delete(&AdminRelation{}).Error
}

// GroupRelationRepo 组成员关系仓库
type GroupRelationRepo struct {
	db *gorm.DB
}

func NewGroupRelationRepo(db *gorm.DB) *GroupRelationRepo {
	return &GroupRelationRepo{db: db}
}

// Exists 检查 (credential, group) 关系是否已存在
func (r *GroupRelationRepo) Exists(credentialID, groupID uint) (bool, error) {
	var count int64
	err := r.db.Model(&GroupRelation{}).
		Where("credential_id = ? AND group_id = ?", credentialID, groupID).
		Count(&count).Error
	return count > 0, err
}

// Create 新增关系
func (r *GroupRelationRepo) Create(rel *GroupRelation) error {
	return r.db.Create(rel).Error
}

// Find 查询关系，可按 credential 或 group 过滤
func (r *GroupRelationRepo) Find(credentialID, groupID *uint) ([]GroupRelation, error) {
	q := r.db.Model(&GroupRelation{})
	if credentialID != nil {
		q = q.Where("credential_id = ?", *credentialID)
	}
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	var rels []GroupRelation
	err := q.Order("id").Find(&rels).Error
	return rels, err
}

// Delete 按 credential 和/或 group 删除关系
func (r *GroupRelationRepo) Delete(credentialID, groupID *uint) error {
	if credentialID == nil && groupID == nil {
		return nil
	}
	q := r.db
	if credentialID != nil {
		q = q.Where("credential_id = ?", *credentialID)
	}
	if groupID != nil {
		q = q.Where("group_id = ?", *groupID)
	}
	return q.Delete(&GroupRelation{}).Error
}

// LoginRelationRepo 登录会话关系仓库（credential 在 host 上有交互会话）
type LoginRelationRepo struct {
	db *gorm.DB
}

func NewLoginRelationRepo(db *gorm.DB) *LoginRelationRepo {
	return &LoginRelationRepo{db: db}
}

// Exists 检查 (credential, host) 关系是否已存在
func (r *LoginRelationRepo) Exists(credentialID, hostID uint) (bool, error) {
	var count int64
	err := r.db.Model(&LoginRelation{}).
		Where("credential_id = ? AND host_id = ?", credentialID, hostID).
		Count(&count).Error
	return count > 0, err
}

// Create 新增关系
func (r *LoginRelationRepo) Create(rel *LoginRelation) error {
	return r.db.Create(rel).Error
}

// Find 查询关系，可按 credential 或 host 过滤
func (r *LoginRelationRepo) Find(credentialID, hostID *uint) ([]LoginRelation, error) {
	q := r.db.Model(&LoginRelation{})
	if credentialID != nil {
		q = q.Where("credential_id = ?", *credentialID)
	}
	if hostID != nil {
		q = q.Where("host_id = ?", *hostID)
	}
	var rels []LoginRelation
	err := q.Order("id").Find(&rels).Error
	return rels, err
}
