package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"

	"MoexLens/internal/bonds"
	"MoexLens/internal/calculator"
	"MoexLens/internal/chart"
	"MoexLens/internal/export"
	"MoexLens/internal/feed"
	"MoexLens/internal/model"
	"MoexLens/internal/normalizer"
	"MoexLens/internal/notifier"
)

const sendRetries = 3

// Notifier delivers digests.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhotoWithRetry(ctx context.Context, caption string, png []byte, maxRetries int) error
}

// Options are the digest settings.
type Options struct {
	Viewport   model.ViewportState
	OutputPath string
	BondLimit  int
	Filters    bonds.Filters
}

// Scheduler runs the digest on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Feed     *feed.Feed
	Yields   *calculator.YieldCalculator
	Renderer *chart.Renderer
	Notifier Notifier
	Options  Options
	Ctx      context.Context
	Logger   *slog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, f *feed.Feed, yields *calculator.YieldCalculator, n Notifier, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Feed:     f,
		Yields:   yields,
		Renderer: chart.NewRenderer(),
		Notifier: n,
		Options:  opts,
		Ctx:      ctx,
		Logger:   logger,
	}
}

// RegisterAll registers the digest task.
func (s *Scheduler) RegisterAll(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for a running digest.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunDigestNow executes the digest immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDigestNow() {
	s.digestTask()
}

func (s *Scheduler) digestTask() {
	s.Logger.Info("running digest", "ticker", s.Feed.Ticker)
	s.trySend(notifier.FormatDigestHeader(s.Yields.Now()))

	png, caption, err := s.BuildChart("")
	if err != nil {
		s.Logger.Error("digest chart", "error", err)
		s.trySend(fmt.Sprintf("❌ Не удалось построить график: %v", err))
	} else {
		s.trySendPhoto(caption, png)
	}

	msgs, err := s.BuildBondReport(0)
	if err != nil {
		s.Logger.Error("digest bonds", "error", err)
		return
	}
	for _, m := range msgs {
		s.trySend(m)
	}
}

// BuildChart renders the candle chart for ticker (the feed default when
// empty) and returns the PNG with its caption. The image is also written to
// the configured output path.
func (s *Scheduler) BuildChart(ticker string) ([]byte, string, error) {
	_, png, caption, err := s.renderChart(ticker)
	return png, caption, err
}

// BuildExport renders the chart for ticker and also lays the delivered
// candles and the image out as an xlsx workbook.
func (s *Scheduler) BuildExport(ticker string) (png []byte, caption string, workbook []byte, err error) {
	snap, png, caption, err := s.renderChart(ticker)
	if err != nil {
		return nil, "", nil, err
	}
	scale := 1.0
	if r := s.Options.Viewport.DevicePixelRatio; r > 0 {
		scale = 1 / r
	}
	workbook, err = export.Workbook(snap.Rows, png, scale)
	if err != nil {
		return png, caption, nil, err
	}
	return png, caption, workbook, nil
}

func (s *Scheduler) renderChart(ticker string) (*feed.Snapshot, []byte, string, error) {
	snap, err := s.Feed.Load(ticker)
	if err != nil {
		return nil, nil, "", err
	}
	png, window, err := chart.RenderPNG(snap.Rows, s.Options.Viewport, s.Renderer)
	if err != nil {
		return nil, nil, "", err
	}

	lastBegin := ""
	for i := len(snap.Rows) - 1; i >= 0; i-- {
		if _, ok := normalizer.Candle(snap.Rows[i]); ok {
			lastBegin = snap.Rows[i].Begin
			break
		}
	}
	caption := notifier.FormatChartCaption(snap.Ticker, len(snap.Candles), window, lastBegin)

	if s.Options.OutputPath != "" {
		if err := writeFile(s.Options.OutputPath, png); err != nil {
			s.Logger.Warn("write chart file", "path", s.Options.OutputPath, "error", err)
		}
	}
	return snap, png, caption, nil
}

// BuildBondReport filters the bond list with the configured filters, keeps
// the top bonds by coupon yield and lays them out as Telegram messages. A
// non-positive limit uses the configured one.
func (s *Scheduler) BuildBondReport(limit int) ([]string, error) {
	return s.BondReport(s.Options.Filters, limit)
}

// BondReport is BuildBondReport with explicit filters.
func (s *Scheduler) BondReport(filters bonds.Filters, limit int) ([]string, error) {
	if limit <= 0 {
		limit = s.Options.BondLimit
	}
	list, err := s.Feed.Bonds()
	if err != nil {
		return nil, err
	}
	found := bonds.Filter(list, filters, s.Yields.Now())
	if len(found) == 0 {
		return []string{notifier.NoBondsText}, nil
	}
	top := bonds.TopByCouponYield(found, limit)
	table := bonds.FormatTable(top, s.Yields)
	return notifier.FormatBondsDigest(len(found), len(top), table, notifier.MessageLimit), nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) notifier.Reply {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Reply{}
	}
	name := fields[0]
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch name {
	case "/start", "/help":
		return notifier.Text(notifier.StartText)
	case "/chart":
		ticker := ""
		if len(args) > 0 {
			ticker = args[0]
		}
		png, caption, workbook, err := s.BuildExport(ticker)
		if png == nil {
			s.Logger.Error("chart command", "ticker", ticker, "error", err)
			return notifier.Text(fmt.Sprintf("❌ Не удалось построить график: %v", err))
		}
		reply := notifier.Reply{Photo: png, Caption: caption}
		if err != nil {
			s.Logger.Error("chart export", "ticker", ticker, "error", err)
			return reply
		}
		if ticker == "" {
			ticker = s.Feed.Ticker
		}
		reply.Document, reply.DocumentName = workbook, export.FileName(ticker)
		return reply
	case "/bonds":
		filters, limit, err := bonds.ParseFilterArgs(args, s.Options.Filters)
		if err != nil {
			return notifier.Text(fmt.Sprintf("%s: %v\n%s", notifier.BadFilterText, err, bonds.FilterUsage))
		}
		msgs, err := s.BondReport(filters, limit)
		if err != nil {
			s.Logger.Error("bonds command", "error", err)
			return notifier.Text(fmt.Sprintf("❌ Не удалось загрузить облигации: %v", err))
		}
		return notifier.Reply{Messages: msgs}
	default:
		return notifier.Text(notifier.StartText)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.Logger.Error("send notification", "error", err)
	}
}

func (s *Scheduler) trySendPhoto(caption string, png []byte) {
	if err := s.Notifier.SendPhotoWithRetry(s.Ctx, caption, png, sendRetries); err != nil {
		s.Logger.Error("send chart", "error", err)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
