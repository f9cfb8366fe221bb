package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Name         string   `gorm:"size:120"`
	Email        string   `gorm:"uniqueIndex;size:255"`
	PasswordHash string   `gorm:"size:255"`
	Resumes      []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 保存简历的当前状态；Content 与 Theme 以 JSONB 存储。
type Resume struct {
	gorm.Model
	Title      string          `gorm:"size:255"`
	TemplateID string          `gorm:"size:32"`
	Content    datatypes.JSON  `gorm:"type:jsonb"`
	Theme      datatypes.JSON  `gorm:"type:jsonb"`
	UserID     uint            `gorm:"index"`
	User       User            `gorm:"constraint:OnDelete:CASCADE"`
	Versions   []ResumeVersion `gorm:"constraint:OnDelete:CASCADE"`
	Exports    []ResumeExport  `gorm:"constraint:OnDelete:CASCADE"`
}

// ResumeVersion 是某一时刻的完整快照（title、templateId、content、theme）。
type ResumeVersion struct {
	gorm.Model
	ResumeID uint           `gorm:"index"`
	Name     string         `gorm:"size:120"`
	Snapshot datatypes.JSON `gorm:"type:jsonb"`
}

// ResumeExport 记录 worker 上传到对象存储的导出文件。
type ResumeExport struct {
	gorm.Model
	ResumeID  uint   `gorm:"index:idx_export_resume_format"`
	Format    string `gorm:"size:8;index:idx_export_resume_format"`
	ObjectKey string `gorm:"size:255"`
	SizeBytes int64
}

// AllModels lists the tables managed by AutoMigrate.
func AllModels() []any {
	return []any{&User{}, &Resume{}, &ResumeVersion{}, &ResumeExport{}}
}
