package jobs

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aspet/simple-bank/models"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const summaryTimeout = 30 * time.Second

type SummarySource interface {
	Summary(ctx context.Context) (models.LedgerSummary, error)
}

// ScheduleLedgerSummary starts a cron that logs the ledger summary on the
// given schedule. The caller owns the returned cron and must Stop it.
func ScheduleLedgerSummary(logger *zap.Logger, source SummarySource, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger.Sugar()})))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
		defer cancel()
		_ = RunLedgerSummary(ctx, logger, source)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule ledger summary %q: %w", spec, err)
	}
	c.Start()
	logger.Info("ledger summary scheduled", zap.String("schedule", spec))
	return c, nil
}

func RunLedgerSummary(ctx context.Context, logger *zap.Logger, source SummarySource) error {
	summary, err := source.Summary(ctx)
	if err != nil {
		logger.Error("ledger summary failed", zap.Error(err))
		return err
	}
	total := zap.Float64("total_balance", summary.TotalBalance)
	if !math.IsInf(summary.TotalBalance, 0) && !math.IsNaN(summary.TotalBalance) {
		total = zap.String("total_balance", decimal.NewFromFloat(summary.TotalBalance).StringFixed(2))
	}
	logger.Info("ledger summary", zap.Int64("accounts", summary.Accounts), total)
	return nil
}

// cronLogger routes cron's own messages, recovered panics included, to zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
