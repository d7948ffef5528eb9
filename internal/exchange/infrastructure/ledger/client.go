// Package ledger 账本节点 HTTP 客户端
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Block 账本区块
type Block struct {
	Header       Header        `json:"header"`
	Transactions []Transaction `json:"transactions"`
}

// Header 区块头
type Header struct {
	Metadata Metadata `json:"metadata"`
}

// Metadata 区块头元数据
type Metadata struct {
	Height    int64 `json:"height"`
	Timestamp int64 `json:"timestamp"`
}

// Height 区块高度
func (b *Block) Height() int64 {
	return b.Header.Metadata.Height
}

// Timestamp 区块时间
func (b *Block) Timestamp() time.Time {
	return time.Unix(b.Header.Metadata.Timestamp, 0)
}

// Transaction 区块内交易
type Transaction struct {
	Status      string          `json:"status"`
	Type        string          `json:"type"`
	Transaction TransactionBody `json:"transaction"`
}

// Accepted 是否为已接受的 execute 交易
func (t *Transaction) Accepted() bool {
	return t.Status == "accepted" && t.Type == "execute"
}

// TransactionBody 交易体
type TransactionBody struct {
	Execution Execution `json:"execution"`
}

// Execution 交易执行内容
type Execution struct {
	Transitions []Transition `json:"transitions"`
}

// Transition 程序状态转移，finalize 依次为 [address, quantity, price]
type Transition struct {
	Program  string   `json:"program"`
	Function string   `json:"function"`
	Finalize []string `json:"finalize"`
}

// ParseU64 解析形如 "123u64" 的无符号整数字面量
func ParseU64(literal string) (int64, error) {
	raw, ok := strings.CutSuffix(literal, "u64")
	if !ok {
		return 0, fmt.Errorf("not a u64 literal: %q", literal)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid u64 literal %q: %w", literal, err)
	}
	return n, nil
}

// Client 账本节点客户端
type Client struct {
	http    *resty.Client
	network string
}

// NewClient 创建账本节点客户端，请求带固定超时
func NewClient(host, network string, timeout time.Duration) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(host).SetTimeout(timeout),
		network: network,
	}
}

// LatestHeight 查询账本最新高度
func (c *Client) LatestHeight(ctx context.Context) (int64, error) {
	resp, err := c.http.R().SetContext(ctx).Get(fmt.Sprintf("/%s/latest/height", c.network))
	if err != nil {
		return 0, fmt.Errorf("failed to fetch latest height: %w", err)
	}
	if !resp.IsSuccess() {
		return 0, fmt.Errorf("latest height request failed: status %d", resp.StatusCode())
	}

	height, err := strconv.ParseInt(strings.TrimSpace(resp.String()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid height response %q: %w", resp.String(), err)
	}
	return height, nil
}

// Blocks 拉取 [start, end) 区间的区块，按高度升序返回
func (c *Client) Blocks(ctx context.Context, start, end int64) ([]Block, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"start": strconv.FormatInt(start, 10),
			"end":   strconv.FormatInt(end, 10),
		}).
		Get(fmt.Sprintf("/%s/blocks", c.network))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocks [%d, %d): %w", start, end, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("blocks request failed: status %d", resp.StatusCode())
	}

	var blocks []Block
	if err := json.Unmarshal(resp.Body(), &blocks); err != nil {
		return nil, fmt.Errorf("failed to decode blocks response: %w", err)
	}
	return blocks, nil
}
