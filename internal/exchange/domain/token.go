// Package domain 链下交易所的领域模型
package domain

import (
	"context"
	"errors"
)

// ErrTokenNotFound 交易对不存在
var ErrTokenNotFound = errors.New("token not found")

// Token 交易对定义，启动时种子化，之后不可变
type Token struct {
	// 交易对 ID，链上结算入口按它区分
	ID uint64 `gorm:"column:id;primaryKey" json:"id"`
	// 基础资产
	Base string `gorm:"column:base;type:varchar(20);not null" json:"base"`
	// 计价资产
	Quote string `gorm:"column:quote;type:varchar(20);not null" json:"quote"`
	// 交易对符号，例如 LEO-USDT
	Symbol string `gorm:"column:symbol;type:varchar(20);uniqueIndex;not null" json:"symbol"`
	// 链上卖单转移函数名
	SellFunction string `gorm:"column:sell_function;type:varchar(64);not null" json:"sell_function"`
	// 链上买单转移函数名
	BuyFunction string `gorm:"column:buy_function;type:varchar(64);not null" json:"buy_function"`
	// 链上结算入口函数名
	SettleFunction string `gorm:"column:settle_function;type:varchar(64);not null" json:"settle_function"`
}

// TableName 指定表名
func (Token) TableName() string {
	return "tokens"
}

// TokenRepository 交易对目录仓储接口
type TokenRepository interface {
	// Seed 种子化交易对目录（按 ID 幂等插入）
	Seed(ctx context.Context, tokens []*Token) error
	// GetByID 按 ID 获取交易对
	GetByID(ctx context.Context, id uint64) (*Token, error)
	// GetBySymbol 按符号获取交易对
	GetBySymbol(ctx context.Context, symbol string) (*Token, error)
	// List 获取全部交易对
	List(ctx context.Context) ([]*Token, error)
}
