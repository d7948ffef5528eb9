// Package http 读侧 HTTP 接口
package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/application"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/pkg/response"
)

// Handler 读侧接口处理器
type Handler struct {
	query *application.MarketDataQueryService
}

// NewHandler 创建读侧接口处理器
func NewHandler(query *application.MarketDataQueryService) *Handler {
	return &Handler{query: query}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Index)

	api := r.Group("/api")
	{
		api.GET("/order", h.ListOrders)
		api.GET("/trade", h.ListTrades)
		api.GET("/price", h.GetDepth)
		api.GET("/history", h.GetHistory)
		api.GET("/summary", h.GetSummary)
		api.GET("/time", h.GetTime)
		api.GET("/symbol", h.GetSymbolInfo)
		api.GET("/symbols", h.ListTokens)
	}
}

// Index 健康检查
func (h *Handler) Index(c *gin.Context) {
	response.OK(c, gin.H{"hello": "world"})
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	from, err := parseUnixParam(c, "from")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	to, err := parseUnixParam(c, "to")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	orders, err := h.query.Orders(c.Request.Context(), application.OrderQuery{
		Symbol:  c.Query("symbol"),
		Side:    c.Query("side"),
		Status:  c.Query("status"),
		Address: c.Query("addr"),
		From:    from,
		To:      to,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, orders)
}

// ListTrades 成交列表
func (h *Handler) ListTrades(c *gin.Context) {
	from, err := parseUnixParam(c, "from")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	to, err := parseUnixParam(c, "to")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	settled, err := parseBoolParam(c, "settled")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	orderID, err := parseUintParam(c, "order_id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tokenID, err := parseUintParam(c, "token_id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	trades, err := h.query.Trades(c.Request.Context(), application.TradeQuery{
		Symbol:  c.Query("symbol"),
		TokenID: tokenID,
		Settled: settled,
		Address: c.Query("addr"),
		OrderID: orderID,
		From:    from,
		To:      to,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, trades)
}

// GetDepth 盘口深度
func (h *Handler) GetDepth(c *gin.Context) {
	depth, err := h.query.Depth(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, depth)
}

// GetHistory K 线序列
func (h *Handler) GetHistory(c *gin.Context) {
	bucket, err := parseResolution(c.DefaultQuery("resolution", "15"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	from, err := parseUnixParam(c, "from")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	to, err := parseUnixParam(c, "to")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var fromTime, toTime time.Time
	if from != nil {
		fromTime = *from
	}
	if to != nil {
		toTime = *to
	}

	history, err := h.query.History(c.Request.Context(), c.Query("symbol"), fromTime, toTime, bucket)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, history)
}

// GetSummary 24 小时聚合
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.query.Summary(c.Request.Context(), c.Query("symbol"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, summary)
}

// GetTime 服务器时间
func (h *Handler) GetTime(c *gin.Context) {
	response.OK(c, time.Now().Unix())
}

// GetSymbolInfo 图表端交易对描述
func (h *Handler) GetSymbolInfo(c *gin.Context) {
	symbol := c.DefaultQuery("symbol", "LEO-USDT")
	response.OK(c, h.query.SymbolInfo(symbol))
}

// ListTokens 交易对目录
func (h *Handler) ListTokens(c *gin.Context) {
	tokens, err := h.query.Tokens(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, tokens)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidQuery):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrTokenNotFound):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// parseUnixParam 解析 Unix 秒时间戳查询参数
func parseUnixParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + name + " timestamp")
	}
	t := time.Unix(sec, 0).UTC()
	return &t, nil
}

func parseBoolParam(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New("invalid " + name + " flag")
	}
	return &v, nil
}

func parseUintParam(c *gin.Context, name string) (*uint64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	return &v, nil
}

// parseResolution 解析 K 线分辨率：纯数字为分钟，支持 1D / 1W
func parseResolution(raw string) (time.Duration, error) {
	switch {
	case raw == "":
		return 15 * time.Minute, nil
	case strings.HasSuffix(raw, "D"):
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "D"))
		if err != nil || days <= 0 {
			return 0, errors.New("invalid resolution")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	case strings.HasSuffix(raw, "W"):
		weeks, err := strconv.Atoi(strings.TrimSuffix(raw, "W"))
		if err != nil || weeks <= 0 {
			return 0, errors.New("invalid resolution")
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	default:
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return 0, errors.New("invalid resolution")
		}
		return time.Duration(minutes) * time.Minute, nil
	}
}
