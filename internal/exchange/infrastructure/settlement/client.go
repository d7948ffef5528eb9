// Package settlement 链上结算服务 HTTP 客户端
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ExecuteRequest 链上程序调用参数
type ExecuteRequest struct {
	ProgramID       string   `json:"program_id"`
	ProgramFunction string   `json:"program_function"`
	Inputs          []string `json:"inputs"`
	PrivateKey      string   `json:"private_key"`
	Fee             int64    `json:"fee"`
}

// Client 结算服务客户端
type Client struct {
	http    *resty.Client
	network string
}

// NewClient 创建结算服务客户端，请求带固定超时
func NewClient(host, network string, timeout time.Duration) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(host).SetTimeout(timeout),
		network: network,
	}
}

// Execute 同步调用链上结算入口，任何非 2xx 响应视为失败
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(fmt.Sprintf("/%s/execute", c.network))
	if err != nil {
		return fmt.Errorf("failed to call settlement service: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("settlement call rejected: status %d, body %s", resp.StatusCode(), resp.String())
	}
	return nil
}
