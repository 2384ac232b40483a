package repository

import (
	"context"

	"github.com/marcnyamweya/TaxApi/internal/model"

	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id uint) (*model.Client, error)
	List(ctx context.Context) ([]model.Client, error)
	ExistsByTIN(ctx context.Context, tin string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := GetDB(ctx, r.db).Order("id").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) ExistsByTIN(ctx context.Context, tin string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).
		Where("tax_identification_number = ?", tin).
		Count(&count).Error
	return count > 0, err
}

func (r *clientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}
