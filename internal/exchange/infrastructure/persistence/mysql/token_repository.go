// Package mysql 基于 GORM 的仓储实现
package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
)

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository 创建交易对仓储
func NewTokenRepository(db *gorm.DB) domain.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Seed(ctx context.Context, tokens []*domain.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(tokens).Error
}

func (r *tokenRepository) GetByID(ctx context.Context, id uint64) (*domain.Token, error) {
	var token domain.Token
	if err := r.db.WithContext(ctx).First(&token, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Token, error) {
	var token domain.Token
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) List(ctx context.Context) ([]*domain.Token, error) {
	var tokens []*domain.Token
	err := r.db.WithContext(ctx).Order("id asc").Find(&tokens).Error
	return tokens, err
}
