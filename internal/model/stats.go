package model

import (
	"context"

	g "github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	common "lotto-server/common"
)

// DrawBetStats 一期注单的聚合统计（对账用）
type DrawBetStats struct {
	DrawNumber  int64  `json:"draw_number"`
	TotalBets   int64  `json:"total_bets"`
	SettledBets int64  `json:"settled_bets"`
	ErrorBets   int64  `json:"error_bets"`
	TotalStake  string `json:"total_stake"`
	TotalPrize  string `json:"total_prize"`
}

// GetDrawBetStats 聚合一期注单的笔数与金额
func GetDrawBetStats(ctx context.Context, db *sqlx.DB, drawNumber int64) (*DrawBetStats, error) {
	where := g.Ex{"draw_number": drawNumber}

	total, err := common.CountCtx(ctx, db, "bets", where)
	if err != nil {
		return nil, err
	}
	settled, err := common.CountCtx(ctx, db, "bets", g.Ex{"draw_number": drawNumber, "bill_status": BillStatusSettled})
	if err != nil {
		return nil, err
	}
	errored, err := common.CountCtx(ctx, db, "bets", g.Ex{"draw_number": drawNumber, "bill_status": BillStatusError})
	if err != nil {
		return nil, err
	}
	stake, err := common.SumCtx(ctx, db, "bets", "total_stake", where)
	if err != nil {
		return nil, err
	}
	prize, err := common.SumCtx(ctx, db, "bets", "prize_amount", where)
	if err != nil {
		return nil, err
	}

	return &DrawBetStats{
		DrawNumber:  drawNumber,
		TotalBets:   total,
		SettledBets: settled,
		ErrorBets:   errored,
		TotalStake:  stake,
		TotalPrize:  prize,
	}, nil
}
