package helper

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	beegocontext "github.com/beego/beego/v2/server/web/context"
)

// IsJSONContentType 判断是否为 JSON 请求
func IsJSONContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.Contains(ct, "json")
}

// 默认输入保护参数
const (
	defaultJSONMaxBytes int64         = 1 << 20 // 1MB
	defaultParseTimeout time.Duration = 1 * time.Second
)

type deadlineReader struct {
	r        io.Reader
	deadline time.Time
}

func (dr *deadlineReader) Read(p []byte) (int, error) {
	if time.Now().After(dr.deadline) {
		return 0, fmt.Errorf("read timeout")
	}
	return dr.r.Read(p)
}

// jsonBodyReader 在 JSON 分支下为请求体增加大小限制与解析超时保护
func jsonBodyReader(ctx *beegocontext.Context) io.Reader {
	lr := io.LimitReader(ctx.Request.Body, defaultJSONMaxBytes)
	return &deadlineReader{r: lr, deadline: time.Now().Add(defaultParseTimeout)}
}

// GetTraceID 统一提取 trace_id：优先从中间件注入的数据取，其次从常见请求头降级
func GetTraceID(ctx *beegocontext.Context) string {
	if v := ctx.Input.GetData("trace_id"); v != nil {
		return fmt.Sprint(v)
	}
	if h := strings.TrimSpace(ctx.Input.Header("X-Trace-ID")); h != "" {
		return h
	}
	if h := strings.TrimSpace(ctx.Input.Header("Trace-Id")); h != "" {
		return h
	}
	return ""
}

// parseByContentType 按 Content-Type 选择解析函数，减少重复 if/else 分支
func parseByContentType[T any](ctx *beegocontext.Context,
	jsonParser func(io.Reader) (T, bool, string),
	formParser func(*beegocontext.Context) (T, bool, string),
) (T, bool, string) {
	ct := ctx.Input.Header("Content-Type")
	if IsJSONContentType(ct) {
		return jsonParser(jsonBodyReader(ctx))
	}
	return formParser(ctx)
}

// -------- Bet helpers --------

// BetParsed 为解析后的投注入参（与控制器/服务层解耦）
// Selection 保持原始 JSON，由 lottery 包做玩法级校验
type BetParsed struct {
	DrawNumber     int64           `json:"draw_number"` // 0 表示投当前在售期次
	Selection      json.RawMessage `json:"selection"`
	Multiplier     int64           `json:"multiplier"`
	Platform       int             `json:"platform"`
	PlatformUserID string          `json:"platform_user_id"`
	UserName       string          `json:"user_name"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func ParseBetFromJSON(r io.Reader) (BetParsed, bool, string) {
	var out BetParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return BetParsed{}, false, "invalid request"
	}
	return out, true, ""
}

func ParseBetFromForm(ctx *beegocontext.Context) (BetParsed, bool, string) {
	var out BetParsed

	if dn := strings.TrimSpace(ctx.Input.Query("draw_number")); dn != "" {
		v, err := strconv.ParseInt(dn, 10, 64)
		if err != nil || v < 0 {
			return BetParsed{}, false, "draw_number must be a positive integer"
		}
		out.DrawNumber = v
	}

	sel := strings.TrimSpace(ctx.Input.Query("selection"))
	if sel == "" {
		return BetParsed{}, false, "selection required"
	}
	out.Selection = json.RawMessage(sel)

	mStr := strings.TrimSpace(ctx.Input.Query("multiplier"))
	if mStr == "" {
		out.Multiplier = 1
	} else {
		m, err := strconv.ParseInt(mStr, 10, 64)
		if err != nil || m <= 0 {
			return BetParsed{}, false, "multiplier must be a positive integer"
		}
		out.Multiplier = m
	}

	// platform: 可选，默认 1；如传入，需为 1..127 的整数
	pStr := strings.TrimSpace(ctx.Input.Query("platform"))
	if pStr == "" {
		out.Platform = 1
	} else {
		pn, err := strconv.Atoi(pStr)
		if err != nil || pn <= 0 || pn >= 128 {
			out.Platform = 1
		} else {
			out.Platform = pn
		}
	}

	out.PlatformUserID = strings.TrimSpace(ctx.Input.Query("platform_user_id"))
	out.UserName = strings.TrimSpace(ctx.Input.Query("user_name"))
	out.IdempotencyKey = strings.TrimSpace(ctx.Input.Query("idempotency_key"))

	return out, true, ""
}

// ValidateBet 对通用字段做二次校验（适用于 JSON 与 FORM）。失败返回 false 与错误消息。
// 选号内容的玩法级校验在 lottery 包完成，这里只做字段级保护。
func ValidateBet(in *BetParsed) (bool, string) {
	if in.Multiplier == 0 {
		in.Multiplier = 1
	}
	if len(in.Selection) == 0 {
		return false, "selection required"
	}
	if in.PlatformUserID == "" {
		return false, "platform_user_id required"
	}
	if in.IdempotencyKey == "" {
		return false, "idempotency_key required"
	}
	// 额外长度保护，避免异常超长输入
	if len(in.PlatformUserID) > 64 || len(in.UserName) > 64 || len(in.IdempotencyKey) > 64 {
		return false, "invalid request"
	}
	if len(in.Selection) > 4096 {
		return false, "selection too large"
	}
	if in.Platform == 0 {
		in.Platform = 1
	}
	if in.Multiplier < 0 {
		return false, "multiplier must be a positive integer"
	}
	return true, ""
}

// ParseAndValidateBet 按 Content-Type 自动解析并做统一校验
func ParseAndValidateBet(ctx *beegocontext.Context) (BetParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseBetFromJSON, ParseBetFromForm)
	if !ok {
		return BetParsed{}, false, msg
	}
	if ok, msg := ValidateBet(&out); !ok {
		return BetParsed{}, false, msg
	}
	return out, true, ""
}

// -------- DrawNumbers helpers --------

// DrawNumbersParsed 开奖号码录入入参
// Auto=true 时由服务端摇号，Front/Back 留空
type DrawNumbersParsed struct {
	DrawNumber int64 `json:"draw_number"`
	Front      []int `json:"front"`
	Back       []int `json:"back"`
	Auto       bool  `json:"auto"`
}

func ParseDrawNumbersFromJSON(r io.Reader) (DrawNumbersParsed, bool, string) {
	var out DrawNumbersParsed
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return DrawNumbersParsed{}, false, "invalid request"
	}
	return out, true, ""
}

func ParseDrawNumbersFromForm(ctx *beegocontext.Context) (DrawNumbersParsed, bool, string) {
	var out DrawNumbersParsed
	if dn := strings.TrimSpace(ctx.Input.Query("draw_number")); dn != "" {
		if v, err := strconv.ParseInt(dn, 10, 64); err == nil {
			out.DrawNumber = v
		}
	}
	out.Auto = strings.EqualFold(strings.TrimSpace(ctx.Input.Query("auto")), "true")
	var ok bool
	if out.Front, ok = parseIntList(ctx.Input.Query("front")); !ok {
		return DrawNumbersParsed{}, false, "front must be a comma separated number list"
	}
	if out.Back, ok = parseIntList(ctx.Input.Query("back")); !ok {
		return DrawNumbersParsed{}, false, "back must be a comma separated number list"
	}
	return out, true, ""
}

func parseIntList(s string) ([]int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func ValidateDrawNumbers(in *DrawNumbersParsed) (bool, string) {
	if in.DrawNumber <= 0 {
		return false, "draw_number required"
	}
	if in.Auto {
		if len(in.Front) > 0 || len(in.Back) > 0 {
			return false, "auto draw does not accept numbers"
		}
		return true, ""
	}
	// 号码的区间/去重/位数校验由 lottery 包完成，这里只挡明显非法长度
	if len(in.Front) == 0 || len(in.Back) == 0 {
		return false, "front and back required unless auto=true"
	}
	if len(in.Front) > 16 || len(in.Back) > 16 {
		return false, "invalid numbers"
	}
	return true, ""
}

// ParseAndValidateDrawNumbers 按 Content-Type 自动解析并校验
func ParseAndValidateDrawNumbers(ctx *beegocontext.Context) (DrawNumbersParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDrawNumbersFromJSON, ParseDrawNumbersFromForm)
	if !ok {
		return DrawNumbersParsed{}, false, msg
	}
	if ok, msg := ValidateDrawNumbers(&out); !ok {
		return DrawNumbersParsed{}, false, msg
	}
	return out, true, ""
}

// -------- DrawEvent helpers --------

// DrawEventParsed 期次生命周期事件入参
// EventType 仅支持数值：1=sales_close 2=draw_numbers 3=settle
type DrawEventParsed struct {
	DrawNumber int64 `json:"draw_number"`
	EventType  int   `json:"event_type"`
}

// ParseDrawEventFromJSON 仅接受数值型 event_type（1..3）
func ParseDrawEventFromJSON(r io.Reader) (DrawEventParsed, bool, string) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return DrawEventParsed{}, false, "invalid request"
	}
	var out DrawEventParsed
	// 仅当字段为 JSON 数字时赋值
	if v, ok := raw["draw_number"].(float64); ok {
		out.DrawNumber = int64(v)
	}
	if v, ok := raw["event_type"].(float64); ok {
		out.EventType = int(v)
	}
	return out, true, ""
}

func ParseDrawEventFromForm(ctx *beegocontext.Context) (DrawEventParsed, bool, string) {
	var out DrawEventParsed
	if dn := strings.TrimSpace(ctx.Input.Query("draw_number")); dn != "" {
		if v, err := strconv.ParseInt(dn, 10, 64); err == nil {
			out.DrawNumber = v
		}
	}
	if et := strings.TrimSpace(ctx.Input.Query("event_type")); et != "" {
		if n, err := strconv.Atoi(et); err == nil {
			out.EventType = n
		}
	}
	return out, true, ""
}

func ValidateDrawEvent(in *DrawEventParsed) (bool, string) {
	if in.DrawNumber <= 0 {
		return false, "draw_number required"
	}
	if in.EventType < 1 || in.EventType > 3 {
		return false, "event_type must be one of: 1|2|3"
	}
	return true, ""
}

func ParseAndValidateDrawEvent(ctx *beegocontext.Context) (DrawEventParsed, bool, string) {
	out, ok, msg := parseByContentType(ctx, ParseDrawEventFromJSON, ParseDrawEventFromForm)
	if !ok {
		return DrawEventParsed{}, false, msg
	}
	if ok, msg := ValidateDrawEvent(&out); !ok {
		return DrawEventParsed{}, false, msg
	}
	return out, true, ""
}
