package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"curriculo/internal/apperror"
	"curriculo/internal/database"
	"curriculo/internal/resume"
)

func setupStore(t *testing.T) (*GormStore, *gorm.DB, uint, uint) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	alice := database.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x"}
	bob := database.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)
	return New(db), db, alice.ID, bob.ID
}

func sampleSnapshot(title string) resume.Snapshot {
	return resume.Snapshot{
		Title:      title,
		TemplateID: resume.TemplateModern,
		Content:    resume.DefaultContent(),
		Theme:      resume.DefaultTheme(),
	}
}

func TestCreateAndGetResume(t *testing.T) {
	s, _, alice, bob := setupStore(t)
	ctx := context.Background()

	snap := sampleSnapshot("CV")
	rec, err := s.CreateResume(ctx, alice, snap)
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, alice, rec.OwnerID)

	got, err := s.GetResume(ctx, alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, snap, got.Snapshot)

	_, err = s.GetResume(ctx, bob, rec.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = s.GetResume(ctx, alice, rec.ID+100)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListResumesOrdersByUpdate(t *testing.T) {
	s, db, alice, bob := setupStore(t)
	ctx := context.Background()

	first, err := s.CreateResume(ctx, alice, sampleSnapshot("first"))
	require.NoError(t, err)
	second, err := s.CreateResume(ctx, alice, sampleSnapshot("second"))
	require.NoError(t, err)
	_, err = s.CreateResume(ctx, bob, sampleSnapshot("other"))
	require.NoError(t, err)

	// 把 second 的更新时间推到 first 之前
	require.NoError(t, db.Model(&database.Resume{}).Where("id = ?", second.ID).
		UpdateColumn("updated_at", first.UpdatedAt.Add(-1e9)).Error)

	list, err := s.ListResumes(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	count, err := s.CountResumes(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestUpdateResumeReplacesSnapshot(t *testing.T) {
	s, _, alice, bob := setupStore(t)
	ctx := context.Background()

	rec, err := s.CreateResume(ctx, alice, sampleSnapshot("CV"))
	require.NoError(t, err)

	next := sampleSnapshot("CV 2")
	next.TemplateID = resume.TemplateExecutive
	next.Theme.PrimaryColor = "#112233"
	next.Content.Header.FullName = "Alice Doe"

	updated, err := s.UpdateResume(ctx, alice, rec.ID, next)
	require.NoError(t, err)
	assert.Equal(t, next, updated.Snapshot)

	_, err = s.UpdateResume(ctx, bob, rec.ID, sampleSnapshot("hijack"))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	got, err := s.GetResume(ctx, alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "CV 2", got.Snapshot.Title)
}

func TestVersionsSnapshotAndRestore(t *testing.T) {
	s, _, alice, bob := setupStore(t)
	ctx := context.Background()

	rec, err := s.CreateResume(ctx, alice, sampleSnapshot("Original"))
	require.NoError(t, err)

	v, err := s.CreateVersion(ctx, alice, rec.ID, "antes da mudança")
	require.NoError(t, err)
	assert.Equal(t, "antes da mudança", v.Name)
	assert.Equal(t, "Original", v.Snapshot.Title)

	changed := sampleSnapshot("Changed")
	changed.TemplateID = resume.TemplateCreative
	_, err = s.UpdateResume(ctx, alice, rec.ID, changed)
	require.NoError(t, err)

	versions, err := s.ListVersions(ctx, alice, rec.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	restored, err := s.RestoreVersion(ctx, alice, rec.ID, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", restored.Snapshot.Title)
	assert.Equal(t, resume.TemplateModern, restored.Snapshot.TemplateID)

	_, err = s.RestoreVersion(ctx, bob, rec.ID, v.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = s.GetVersion(ctx, alice, rec.ID, v.ID+50)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, "version not found", apperror.Message(err))

	_, err = s.ListVersions(ctx, bob, rec.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestDeleteResumeRemovesVersions(t *testing.T) {
	s, db, alice, bob := setupStore(t)
	ctx := context.Background()

	rec, err := s.CreateResume(ctx, alice, sampleSnapshot("CV"))
	require.NoError(t, err)
	_, err = s.CreateVersion(ctx, alice, rec.ID, "v1")
	require.NoError(t, err)

	err = s.DeleteResume(ctx, bob, rec.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	require.NoError(t, s.DeleteResume(ctx, alice, rec.ID))

	var versions int64
	require.NoError(t, db.Unscoped().Model(&database.ResumeVersion{}).Count(&versions).Error)
	assert.Zero(t, versions)

	_, err = s.GetResume(ctx, alice, rec.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestMissingThemeFallsBackToDefault(t *testing.T) {
	s, db, alice, _ := setupStore(t)
	ctx := context.Background()

	row := database.Resume{Title: "legacy", TemplateID: "minimal", UserID: alice}
	require.NoError(t, db.Omit("User").Create(&row).Error)

	rec, err := s.GetResume(ctx, alice, row.ID)
	require.NoError(t, err)
	assert.Equal(t, resume.DefaultTheme(), rec.Snapshot.Theme)
}

func TestExportsLatestPerFormat(t *testing.T) {
	s, _, alice, bob := setupStore(t)
	ctx := context.Background()

	rec, err := s.CreateResume(ctx, alice, sampleSnapshot("CV"))
	require.NoError(t, err)

	_, err = s.LatestExport(ctx, alice, rec.ID, "pdf")
	assert.Equal(t, "export not found", apperror.Message(err))

	_, err = s.RecordExport(ctx, alice, rec.ID, "pdf", "exports/1/1/a.pdf", 10)
	require.NoError(t, err)
	second, err := s.RecordExport(ctx, alice, rec.ID, "pdf", "exports/1/1/b.pdf", 20)
	require.NoError(t, err)
	_, err = s.RecordExport(ctx, alice, rec.ID, "docx", "exports/1/1/c.docx", 30)
	require.NoError(t, err)

	latest, err := s.LatestExport(ctx, alice, rec.ID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "exports/1/1/b.pdf", latest.ObjectKey)

	_, err = s.RecordExport(ctx, bob, rec.ID, "pdf", "x", 1)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = s.LatestExport(ctx, bob, rec.ID, "pdf")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
