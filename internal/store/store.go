// Package store persists résumés and their version snapshots with gorm.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"curriculo/internal/apperror"
	"curriculo/internal/database"
	"curriculo/internal/resume"
)

// Record is a stored résumé.
type Record struct {
	ID        uint
	OwnerID   uint
	Snapshot  resume.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Version is a named snapshot of a résumé.
type Version struct {
	ID        uint
	ResumeID  uint
	Name      string
	Snapshot  resume.Snapshot
	CreatedAt time.Time
}

// Store is the persistence contract used by the HTTP layer and the worker.
// A résumé owned by someone else is reported exactly like a missing one.
type Store interface {
	GetResume(ctx context.Context, owner, id uint) (Record, error)
	ListResumes(ctx context.Context, owner uint) ([]Record, error)
	CountResumes(ctx context.Context, owner uint) (int64, error)
	CreateResume(ctx context.Context, owner uint, snap resume.Snapshot) (Record, error)
	UpdateResume(ctx context.Context, owner, id uint, snap resume.Snapshot) (Record, error)
	DeleteResume(ctx context.Context, owner, id uint) error
	ListVersions(ctx context.Context, owner, resumeID uint) ([]Version, error)
	CreateVersion(ctx context.Context, owner, resumeID uint, name string) (Version, error)
	GetVersion(ctx context.Context, owner, resumeID, versionID uint) (Version, error)
	RestoreVersion(ctx context.Context, owner, resumeID, versionID uint) (Record, error)
	RecordExport(ctx context.Context, owner, resumeID uint, format, objectKey string, size int64) (Export, error)
	LatestExport(ctx context.Context, owner, resumeID uint, format string) (Export, error)
}

// Export points at a generated file in object storage.
type Export struct {
	ID        uint
	ResumeID  uint
	Format    string
	ObjectKey string
	SizeBytes int64
	CreatedAt time.Time
}

var (
	errResumeNotFound  = apperror.NotFound("resume not found")
	errVersionNotFound = apperror.NotFound("version not found")
	errExportNotFound  = apperror.NotFound("export not found")
)

// GormStore implements Store.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func encodeJSON(v any) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperror.Internal("failed to encode resume", err)
	}
	return datatypes.JSON(data), nil
}

func toRecord(m database.Resume) (Record, error) {
	rec := Record{
		ID:        m.ID,
		OwnerID:   m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Snapshot: resume.Snapshot{
			Title:      m.Title,
			TemplateID: resume.TemplateID(m.TemplateID),
		},
	}
	if len(m.Content) > 0 {
		if err := json.Unmarshal(m.Content, &rec.Snapshot.Content); err != nil {
			return Record{}, apperror.Internal("failed to decode resume content", err)
		}
	}
	rec.Snapshot.Theme = resume.DefaultTheme()
	if len(m.Theme) > 0 {
		if err := json.Unmarshal(m.Theme, &rec.Snapshot.Theme); err != nil {
			return Record{}, apperror.Internal("failed to decode resume theme", err)
		}
	}
	return rec, nil
}

func toVersion(m database.ResumeVersion) (Version, error) {
	v := Version{ID: m.ID, ResumeID: m.ResumeID, Name: m.Name, CreatedAt: m.CreatedAt}
	if err := json.Unmarshal(m.Snapshot, &v.Snapshot); err != nil {
		return Version{}, apperror.Internal("failed to decode version snapshot", err)
	}
	return v, nil
}

func snapshotColumns(snap resume.Snapshot) (map[string]any, error) {
	content, err := encodeJSON(snap.Content)
	if err != nil {
		return nil, err
	}
	theme, err := encodeJSON(snap.Theme)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"title":       snap.Title,
		"template_id": string(snap.TemplateID),
		"content":     content,
		"theme":       theme,
	}, nil
}

func (s *GormStore) ownedResume(tx *gorm.DB, owner, id uint) (database.Resume, error) {
	var m database.Resume
	err := tx.Where("id = ? AND user_id = ?", id, owner).First(&m).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return database.Resume{}, errResumeNotFound
	case err != nil:
		return database.Resume{}, apperror.Internal("failed to query resume", err)
	}
	return m, nil
}

func (s *GormStore) GetResume(ctx context.Context, owner, id uint) (Record, error) {
	m, err := s.ownedResume(s.db.WithContext(ctx), owner, id)
	if err != nil {
		return Record{}, err
	}
	return toRecord(m)
}

// ListResumes returns the owner's résumés, most recently updated first.
func (s *GormStore) ListResumes(ctx context.Context, owner uint) ([]Record, error) {
	var rows []database.Resume
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal("failed to list resumes", err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *GormStore) CountResumes(ctx context.Context, owner uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&database.Resume{}).
		Where("user_id = ?", owner).
		Count(&count).Error; err != nil {
		return 0, apperror.Internal("failed to count resumes", err)
	}
	return count, nil
}

func (s *GormStore) CreateResume(ctx context.Context, owner uint, snap resume.Snapshot) (Record, error) {
	content, err := encodeJSON(snap.Content)
	if err != nil {
		return Record{}, err
	}
	theme, err := encodeJSON(snap.Theme)
	if err != nil {
		return Record{}, err
	}

	m := database.Resume{
		Title:      snap.Title,
		TemplateID: string(snap.TemplateID),
		Content:    content,
		Theme:      theme,
		UserID:     owner,
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&m).Error; err != nil {
		return Record{}, apperror.Internal("failed to create resume", err)
	}
	return toRecord(m)
}

// UpdateResume replaces the whole snapshot inside one transaction.
func (s *GormStore) UpdateResume(ctx context.Context, owner, id uint, snap resume.Snapshot) (Record, error) {
	var out Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.updateTx(tx, owner, id, snap)
		out = rec
		return err
	})
	return out, err
}

func (s *GormStore) updateTx(tx *gorm.DB, owner, id uint, snap resume.Snapshot) (Record, error) {
	m, err := s.ownedResume(tx, owner, id)
	if err != nil {
		return Record{}, err
	}
	cols, err := snapshotColumns(snap)
	if err != nil {
		return Record{}, err
	}
	if err := tx.Model(&m).Updates(cols).Error; err != nil {
		return Record{}, apperror.Internal("failed to update resume", err)
	}
	if err := tx.First(&m, m.ID).Error; err != nil {
		return Record{}, apperror.Internal("failed to reload resume", err)
	}
	return toRecord(m)
}

// DeleteResume removes the résumé and all of its versions.
func (s *GormStore) DeleteResume(ctx context.Context, owner, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.ownedResume(tx, owner, id)
		if err != nil {
			return err
		}
		if err := tx.Unscoped().Where("resume_id = ?", m.ID).Delete(&database.ResumeVersion{}).Error; err != nil {
			return apperror.Internal("failed to delete versions", err)
		}
		if err := tx.Unscoped().Where("resume_id = ?", m.ID).Delete(&database.ResumeExport{}).Error; err != nil {
			return apperror.Internal("failed to delete exports", err)
		}
		if err := tx.Unscoped().Delete(&database.Resume{}, m.ID).Error; err != nil {
			return apperror.Internal("failed to delete resume", err)
		}
		return nil
	})
}

// ListVersions returns versions newest first.
func (s *GormStore) ListVersions(ctx context.Context, owner, resumeID uint) ([]Version, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.ownedResume(db, owner, resumeID); err != nil {
		return nil, err
	}

	var rows []database.ResumeVersion
	if err := db.Where("resume_id = ?", resumeID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, apperror.Internal("failed to list versions", err)
	}

	out := make([]Version, 0, len(rows))
	for _, row := range rows {
		v, err := toVersion(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CreateVersion snapshots the résumé's current state under name.
func (s *GormStore) CreateVersion(ctx context.Context, owner, resumeID uint, name string) (Version, error) {
	var out Version
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.ownedResume(tx, owner, resumeID)
		if err != nil {
			return err
		}
		rec, err := toRecord(m)
		if err != nil {
			return err
		}
		snapshot, err := encodeJSON(rec.Snapshot)
		if err != nil {
			return err
		}

		row := database.ResumeVersion{ResumeID: m.ID, Name: name, Snapshot: snapshot}
		if err := tx.Create(&row).Error; err != nil {
			return apperror.Internal("failed to create version", err)
		}
		out, err = toVersion(row)
		return err
	})
	return out, err
}

func (s *GormStore) versionTx(tx *gorm.DB, owner, resumeID, versionID uint) (Version, error) {
	if _, err := s.ownedResume(tx, owner, resumeID); err != nil {
		return Version{}, err
	}
	var row database.ResumeVersion
	err := tx.Where("id = ? AND resume_id = ?", versionID, resumeID).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Version{}, errVersionNotFound
	case err != nil:
		return Version{}, apperror.Internal("failed to query version", err)
	}
	return toVersion(row)
}

func (s *GormStore) GetVersion(ctx context.Context, owner, resumeID, versionID uint) (Version, error) {
	return s.versionTx(s.db.WithContext(ctx), owner, resumeID, versionID)
}

// RestoreVersion overwrites the résumé with the version's snapshot.
func (s *GormStore) RestoreVersion(ctx context.Context, owner, resumeID, versionID uint) (Record, error) {
	var out Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		v, err := s.versionTx(tx, owner, resumeID, versionID)
		if err != nil {
			return err
		}
		out, err = s.updateTx(tx, owner, resumeID, v.Snapshot)
		if err != nil {
			return fmt.Errorf("restore version %d: %w", versionID, err)
		}
		return nil
	})
	return out, err
}

func toExport(m database.ResumeExport) Export {
	return Export{
		ID:        m.ID,
		ResumeID:  m.ResumeID,
		Format:    m.Format,
		ObjectKey: m.ObjectKey,
		SizeBytes: m.SizeBytes,
		CreatedAt: m.CreatedAt,
	}
}

func (s *GormStore) RecordExport(ctx context.Context, owner, resumeID uint, format, objectKey string, size int64) (Export, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.ownedResume(db, owner, resumeID); err != nil {
		return Export{}, err
	}
	row := database.ResumeExport{ResumeID: resumeID, Format: format, ObjectKey: objectKey, SizeBytes: size}
	if err := db.Create(&row).Error; err != nil {
		return Export{}, apperror.Internal("failed to record export", err)
	}
	return toExport(row), nil
}

// LatestExport returns the most recent export of the given format.
func (s *GormStore) LatestExport(ctx context.Context, owner, resumeID uint, format string) (Export, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.ownedResume(db, owner, resumeID); err != nil {
		return Export{}, err
	}
	var row database.ResumeExport
	err := db.Where("resume_id = ? AND format = ?", resumeID, format).
		Order("created_at DESC").
		Order("id DESC").
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Export{}, errExportNotFound
	case err != nil:
		return Export{}, apperror.Internal("failed to query export", err)
	}
	return toExport(row), nil
}
