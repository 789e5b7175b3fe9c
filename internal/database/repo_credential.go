package database

import (
	"strings"

	"gorm.io/gorm"
)

// CredentialRepo 凭据数据仓库（候选键 domain+username+secret_type，不区分大小写）
type CredentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Create 新增凭据
func (r *CredentialRepo) Create(c *Credential) error {
	return r.db.Create(c).Error
}

// Save 保存补全后的凭据
func (r *CredentialRepo) Save(c *Credential) error {
	return r.db.Save(c).Error
}

// GetByID 根据 ID 获取凭据
func (r *CredentialRepo) GetByID(id uint) (*Credential, error) {
	var c Credential
	if err := r.db.First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// Exists 检查凭据 ID 是否有效
func (r *CredentialRepo) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&Credential{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByKey 按候选键查询（reconciliation 的存在性检查）
func (r *CredentialRepo) FindByKey(domain, username, secretType string) ([]Credential, error) {
	var creds []Credential
	err := r.db.Where(
		"LOWER(domain) = ? AND LOWER(username) = ? AND LOWER(secret_type) = ?",
		strings.ToLower(domain), strings.ToLower(username), strings.ToLower(secretType),
	).Order("id").Find(&creds).Error
	return creds, err
}

// FindByUser 按 (domain, username) 查询，忽略 secret_type
func (r *CredentialRepo) FindByUser(domain, username string) ([]Credential, error) {
	var creds []Credential
	err := r.db.Where(
		"LOWER(domain) = ? AND LOWER(username) = ?",
		strings.ToLower(domain), strings.ToLower(username),
	).Order("id").Find(&creds).Error
	return creds, err
}

// FindExact 按完整四元组精确匹配（relation link 的凭据选择器）
func (r *CredentialRepo) FindExact(secretType, domain, username, secret string) ([]Credential, error) {
	var creds []Credential
	err := r.db.Where(
		"secret_type = ? AND LOWER(domain) = ? AND LOWER(username) = ? AND secret = ?",
		secretType, strings.ToLower(domain), strings.ToLower(username), secret,
	).Order("id").Find(&creds).Error
	return creds, err
}

// Find 查询凭据，filterTerm 按优先级解释：
// 有效 ID > secret_type 过滤 > username 模糊匹配 > 全量扫描。
func (r *CredentialRepo) Find(filterTerm, secretType string) ([]Credential, error) {
	var creds []Credential

	if id, ok := parseID(filterTerm); ok {
		exists, err := r.Exists(id)
		if err != nil {
			return nil, err
		}
		if exists {
			err := r.db.Where("id = ?", id).Find(&creds).Error
			return creds, err
		}
	}

	switch {
	case secretType != "":
		err := r.db.Where("secret_type = ?", secretType).Order("id").Find(&creds).Error
		return creds, err
	case filterTerm != "":
		err := r.db.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(filterTerm)+"%").
			Order("id").Find(&creds).Error
		return creds, err
	default:
		err := r.db.Order("id").Find(&creds).Error
		return creds, err
	}
}

// Delete 按 ID 集合删除凭据（显式管理操作，扫描流程不会删除）
func (r *CredentialRepo) Delete(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&Credential{}).Error
}
