package database

import (
	"strings"

	"gorm.io/gorm"
)

// GroupRepo AD 组数据仓库（候选键 domain+name，不区分大小写）
type GroupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Create 新增组
func (r *GroupRepo) Create(g *Group) error {
	return r.db.Create(g).Error
}

// Save 保存更新后的组
func (r *GroupRepo) Save(g *Group) error {
	return r.db.Save(g).Error
}

// GetByID 根据 ID 获取组
func (r *GroupRepo) GetByID(id uint) (*Group, error) {
	var g Group
	if err := r.db.First(&g, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// Exists 检查组 ID 是否有效（外键前置校验）
func (r *GroupRepo) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&Group{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByKey 按候选键查询（reconciliation 的存在性检查）
func (r *GroupRepo) FindByKey(domain, name string) ([]Group, error) {
	var groups []Group
	err := r.db.Where(
		"LOWER(domain) = ? AND LOWER(name) = ?",
		strings.ToLower(domain), strings.ToLower(name),
	).Order("id").Find(&groups).Error
	return groups, err
}

// Find 查询组，filterTerm 按优先级解释：
// 有效 ID > name 模糊匹配 > 全量扫描。
func (r *GroupRepo) Find(filterTerm string) ([]Group, error) {
	var groups []Group

	if id, ok := parseID(filterTerm); ok {
		exists, err := r.Exists(id)
		if err != nil {
			return nil, err
		}
		if exists {
			err := r.db.Where("id = ?", id).Find(&groups).Error
			return groups, err
		}
	}

	if filterTerm != "" {
		err := r.db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filterTerm)+"%").
			Order("id").Find(&groups).Error
		return groups, err
	}
	err := r.db.Order("id").Find(&groups).Error
	return groups, err
}
