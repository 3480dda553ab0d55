package service

import (
	"context"
	"encoding/json"

	chelper "lotto-server/common/helper"
	infmysql "lotto-server/internal/infra/mysql"
	"lotto-server/internal/model"
)

// ListBetsInput 用户投注记录查询
type ListBetsInput struct {
	PlatformID     int8
	PlatformUserID string
	DrawNumber     int64  // 0 表示不限期次
	BillStatus     int8   // 0 表示不限状态
	StartTime      string // 投注时间范围，空则默认近 3 天
	EndTime        string
	Limit          int
}

// BetView 单条投注记录的对外视图
type BetView struct {
	BillNo      string          `json:"bill_no"`
	DrawNumber  int64           `json:"draw_number"`
	BetType     string          `json:"bet_type"`
	Selection   json.RawMessage `json:"selection"`
	Multiplier  int64           `json:"multiplier"`
	TotalStake  string          `json:"total_stake"`
	BillStatus  int8            `json:"bill_status"`
	PrizeTier   int8            `json:"prize_tier,omitempty"`
	PrizeAmount string          `json:"prize_amount"`
	BetTime     string          `json:"bet_time"`
}

type ListBetsOutput struct {
	Records []BetView `json:"records"`
	Count   int       `json:"count"`
}

type QueryService interface {
	ListUserBets(ctx context.Context, in ListBetsInput) (*ListBetsOutput, error)
	// GetDrawStats 一期注单的聚合统计（管理端对账）
	GetDrawStats(ctx context.Context, drawNumber int64) (*model.DrawBetStats, error)
}

type queryService struct{}

func NewQueryService() QueryService { return &queryService{} }

func (s *queryService) ListUserBets(ctx context.Context, in ListBetsInput) (*ListBetsOutput, error) {
	if in.PlatformUserID == "" {
		return nil, ErrBadRequest
	}

	startSec, endSec := chelper.ParseTimeRange(in.StartTime, in.EndTime)
	records, err := model.ListUserBets(ctx, infmysql.SQLX(), in.PlatformID, in.PlatformUserID,
		in.DrawNumber, in.BillStatus, startSec*1000, endSec*1000, in.Limit)
	if err != nil {
		return nil, err
	}

	views := make([]BetView, 0, len(records))
	for i := range records {
		r := &records[i]
		views = append(views, BetView{
			BillNo:      r.BillNo,
			DrawNumber:  r.DrawNumber,
			BetType:     r.BetTypeStr,
			Selection:   json.RawMessage(r.Selection),
			Multiplier:  r.Multiplier,
			TotalStake:  chelper.TrimDecimal(r.TotalStake),
			BillStatus:  r.BillStatus,
			PrizeTier:   r.PrizeTier,
			PrizeAmount: chelper.TrimDecimal(r.PrizeAmount),
			BetTime:     chelper.FormatMilliToYMDHMS(r.BetTime),
		})
	}
	return &ListBetsOutput{Records: views, Count: len(views)}, nil
}

func (s *queryService) GetDrawStats(ctx context.Context, drawNumber int64) (*model.DrawBetStats, error) {
	if drawNumber <= 0 {
		return nil, ErrBadRequest
	}
	return model.GetDrawBetStats(ctx, infmysql.SQLX(), drawNumber)
}
