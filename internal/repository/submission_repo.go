package repository

import (
	"context"
	"time"

	"github.com/marcnyamweya/TaxApi/internal/model"

	"gorm.io/gorm"
)

// SubmissionFilter narrows List results; zero values mean no filtering.
type SubmissionFilter struct {
	ClientID uint
	Status   string
	Page     int
	Limit    int
}

// StatusMutation is the atomic field set applied by an accepted workflow
// transition. Timestamp pointers are only written when non-nil, so a
// SUBMITTED → UNDER_REVIEW move touches nothing but the status.
type StatusMutation struct {
	Status        string
	ReviewedAt    *time.Time
	ResolvedAt    *time.Time
	ReviewerNotes string
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.TaxSubmission) error
	FindByID(ctx context.Context, id uint) (*model.TaxSubmission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.TaxSubmission, int64, error)
	TransitionStatus(ctx context.Context, id uint, from string, mut StatusMutation) (bool, error)
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *model.TaxSubmission) error {
	return GetDB(ctx, r.db).Create(sub).Error
}

func (r *submissionRepository) FindByID(ctx context.Context, id uint) (*model.TaxSubmission, error) {
	var sub model.TaxSubmission
	if err := GetDB(ctx, r.db).Preload("Client").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]model.TaxSubmission, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.TaxSubmission{})
	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	var subs []model.TaxSubmission
	if err := query.
		Preload("Client").
		Order("submitted_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&subs).Error; err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// TransitionStatus applies the mutation only if the row is still in the
// expected `from` status. A false return means a concurrent writer moved the
// submission first; the caller must re-read and decide against fresh state.
func (r *submissionRepository) TransitionStatus(ctx context.Context, id uint, from string, mut StatusMutation) (bool, error) {
	updates := map[string]interface{}{"status": mut.Status}
	if mut.ReviewedAt != nil {
		updates["reviewed_at"] = *mut.ReviewedAt
		updates["reviewer_notes"] = mut.ReviewerNotes
	}
	if mut.ResolvedAt != nil {
		updates["resolved_at"] = *mut.ResolvedAt
	}

	res := GetDB(ctx, r.db).Model(&model.TaxSubmission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes a submission. Audit entries are never cascaded: their
// submission reference is nulled first so the trail survives the deletion.
func (r *submissionRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)

	if err := db.Model(&model.AuditLog{}).
		Where("tax_submission_id = ?", id).
		Update("tax_submission_id", nil).Error; err != nil {
		return err
	}

	return db.Delete(&model.TaxSubmission{}, id).Error
}

func (r *submissionRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TaxSubmission{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}
