package database

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// HostRepo 主机数据仓库（按扫描观察去重，ip 为业务唯一键）
type HostRepo struct {
	db *gorm.DB
}

func NewHostRepo(db *gorm.DB) *HostRepo {
	return &HostRepo{db: db}
}

// Create 新增主机记录
func (r *HostRepo) Create(h *Host) error {
	return r.db.Create(h).Error
}

// Save 保存合并后的主机记录
func (r *HostRepo) Save(h *Host) error {
	return r.db.Save(h).Error
}

// GetByID 根据 ID 获取主机
func (r *HostRepo) GetByID(id uint) (*Host, error) {
	var h Host
	if err := r.db.First(&h, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &h, nil
}

// Exists 检查主机 ID 是否有效（外键前置校验）
func (r *HostRepo) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&Host{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByIP 按 ip 精确匹配（reconciliation 的存在性检查）
func (r *HostRepo) FindByIP(ip string) ([]Host, error) {
	var hosts []Host
	err := r.db.Where("ip = ?", ip).Order("id").Find(&hosts).Error
	return hosts, err
}

// FindByIPSubstring 按 ip 模糊匹配（relation link 的主机选择器）
func (r *HostRepo) FindByIPSubstring(term string) ([]Host, error) {
	var hosts []Host
	err := r.db.Where("LOWER(ip) LIKE ?", "%"+strings.ToLower(term)+"%").
		Order("id").Find(&hosts).Error
	return hosts, err
}

// Find 查询主机，filterTerm 按优先级解释：
// 有效 ID > "dc" 关键字 > ip/hostname 模糊匹配 > 全量扫描。
// 数字且命中已有 ID 时永远按 ID 查询，绝不当作子串。
func (r *HostRepo) Find(filterTerm, domain string) ([]Host, error) {
	var hosts []Host

	if id, ok := parseID(filterTerm); ok {
		exists, err := r.Exists(id)
		if err != nil {
			return nil, err
		}
		if exists {
			err := r.db.Where("id = ?", id).Find(&hosts).Error
			return hosts, err
		}
	}

	switch {
	case strings.EqualFold(filterTerm, "dc"):
		q := r.db.Where("is_dc = ?", true)
		if domain != "" {
			q = q.Where("LOWER(domain) = ?", strings.ToLower(domain))
		}
		err := q.Order("id").Find(&hosts).Error
		return hosts, err
	case filterTerm != "":
		pattern := "%" + strings.ToLower(filterTerm) + "%"
		err := r.db.Where("LOWER(ip) LIKE ? OR LOWER(hostname) LIKE ?", pattern, pattern).
			Order("id").Find(&hosts).Error
		return hosts, err
	default:
		err := r.db.Order("id").Find(&hosts).Error
		return hosts, err
	}
}

// DomainControllers 返回域控，可按域过滤
func (r *HostRepo) DomainControllers(domain string) ([]Host, error) {
	return r.Find("dc", domain)
}

// parseID interprets a filter term as a row id. The term must be the
// whole number, not merely start with one.
func parseID(term string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(term), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
