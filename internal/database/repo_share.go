package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShareRepo 共享数据仓库（(host, credential, name) 唯一，重复枚举走 upsert）
type ShareRepo struct {
	db *gorm.DB
}

func NewShareRepo(db *gorm.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

// Upsert 新增或更新共享记录（冲突时刷新 remark/readable/writable）。
// credential_id 为 NULL 时唯一索引视每行各不相同，OnConflict 永远不
// 触发，必须显式查旧行原地更新。
func (r *ShareRepo) Upsert(s *Share) error {
	if s.CredentialID == nil {
		var existing Share
		err := r.db.Where("host_id = ? AND name = ? AND credential_id IS NULL", s.HostID, s.Name).
			First(&existing).Error
		if err == nil {
			existing.Remark = s.Remark
			existing.Readable = s.Readable
			existing.Writable = s.Writable
			if err := r.db.Save(&existing).Error; err != nil {
				return err
			}
			*s = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.db.Create(s).Error
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "host_id"}, {Name: "credential_id"}, {Name: "name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"remark", "readable", "writable", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the surviving row's id after a conflict.
	return r.db.Where("host_id = ? AND credential_id = ? AND name = ?",
		s.HostID, *s.CredentialID, s.Name).First(s).Error
}

// GetByID 根据 ID 获取共享
func (r *ShareRepo) GetByID(id uint) (*Share, error) {
	var s Share
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Exists 检查共享 ID 是否有效
func (r *ShareRepo) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&Share{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Find 查询共享，filterTerm 按优先级解释：
// 有效 ID > name 模糊匹配 > 全量扫描。
func (r *ShareRepo) Find(filterTerm string) ([]Share, error) {
	var shares []Share

	if id, ok := parseID(filterTerm); ok {
		exists, err := r.Exists(id)
		if err != nil {
			return nil, err
		}
		if exists {
			err := r.db.Where("id = ?", id).Find(&shares).Error
			return shares, err
		}
	}

	if filterTerm != "" {
		err := r.db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filterTerm)+"%").
			Order("id").Find(&shares).Error
		return shares, err
	}
	err := r.db.Order("id").Find(&shares).Error
	return shares, err
}

// FindByAccess 按访问权限过滤（perms 含 "r" 过滤可读，含 "w" 过滤可写）
func (r *ShareRepo) FindByAccess(perms string, shareID *uint) ([]Share, error) {
	perms = strings.ToLower(perms)
	q := r.db.Model(&Share{})
	if shareID != nil {
		q = q.Where("id = ?", *shareID)
	}
	if strings.Contains(perms, "r") {
		q = q.Where("readable = ?", true)
	}
	if strings.Contains(perms, "w") {
		q = q.Where("writable = ?", true)
	}
	var shares []Share
	err := q.Order("id").Find(&shares).Error
	return shares, err
}

// CredentialsWithAccess 返回对指定主机共享拥有给定权限的凭据 ID
func (r *ShareRepo) CredentialsWithAccess(hostID uint, shareName, perms string) ([]uint, error) {
	perms = strings.ToLower(perms)
	q := r.db.Model(&Share{}).
		Where("host_id = ? AND name = ? AND credential_id IS NOT NULL", hostID, shareName)
	if strings.Contains(perms, "r") {
		q = q.Where("readable = ?", true)
	}
	if strings.Contains(perms, "w") {
		q = q.Where("writable = ?", true)
	}
	var ids []uint
	err := q.Order("credential_id").Pluck("credential_id", &ids).Error
	return ids, err
}
