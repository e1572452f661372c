package repository

import (
	"context"
	"errors"

	"github.com/slamora/lupanes/internal/model"

	"gorm.io/gorm"
)

type ProducerRepository interface {
	GetOrCreate(ctx context.Context, nombre string) (*model.Producer, error)
	List(ctx context.Context) ([]model.Producer, error)
}

type producerRepo struct{ db *gorm.DB }

func NewProducerRepository(db *gorm.DB) ProducerRepository { return &producerRepo{db: db} }

func (r *producerRepo) GetOrCreate(ctx context.Context, nombre string) (*model.Producer, error) {
	var p model.Producer
	err := r.db.WithContext(ctx).Where("nombre = ?", nombre).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p = model.Producer{Nombre: nombre}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *producerRepo) List(ctx context.Context) ([]model.Producer, error) {
	var producers []model.Producer
	err := r.db.WithContext(ctx).Order("lower(nombre) ASC").Find(&producers).Error
	return producers, err
}
