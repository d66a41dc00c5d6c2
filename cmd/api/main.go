package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"daily-fortune/internal/adapters/repo"
	"daily-fortune/internal/domain"
	"daily-fortune/internal/infra/config"
	"daily-fortune/internal/infra/db"
	httpinfra "daily-fortune/internal/infra/http"
	applog "daily-fortune/internal/infra/log"
	"daily-fortune/internal/infra/metrics"
	fortuneusecase "daily-fortune/internal/usecase/fortune"
	statsusecase "daily-fortune/internal/usecase/stats"
)

const dateLayout = "2006-01-02"

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.FortuneTZ).Msg("api: некорректный опорный часовой пояс")
	}

	pool, err := db.Connect(cfg.PGDSN, 5)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	buckets := fortuneusecase.Buckets{High: cfg.Luck.HighThreshold, Medium: cfg.Luck.MediumThreshold}
	fortuneService := fortuneusecase.NewService(repoAdapter, repoAdapter, repoAdapter, buckets, loc,
		logger.With().Str("component", "fortune").Logger())
	ranker := statsusecase.NewRanker(repoAdapter, cfg.Rank.Metric)

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger())

	srv.Router.Route("/api/v1", func(r chi.Router) {
		r.Get("/fortune/today", func(w http.ResponseWriter, req *http.Request) {
			userID := req.URL.Query().Get("user_id")
			date, ok := parseDate(w, req, loc)
			if !ok {
				return
			}
			fortune, err := fortuneService.GetOrCompute(req.Context(), userID, date)
			if err != nil {
				writeFortuneError(w, err, logger)
				return
			}
			httpinfra.WriteJSON(w, http.StatusOK, fortuneResponse(fortune))
		})

		r.Get("/fortune/numbers", func(w http.ResponseWriter, req *http.Request) {
			userID := req.URL.Query().Get("user_id")
			date, ok := parseDate(w, req, loc)
			if !ok {
				return
			}
			fortune, err := fortuneService.GetOrCompute(req.Context(), userID, date)
			if err != nil {
				writeFortuneError(w, err, logger)
				return
			}
			httpinfra.WriteJSON(w, http.StatusOK, map[string]any{
				"date":          fortune.Date.Format(dateLayout),
				"lucky_numbers": fortune.LuckyNumbers,
				"lottery_luck":  fortune.LotteryLuck,
			})
		})

		r.Get("/zodiac/rank", func(w http.ResponseWriter, req *http.Request) {
			date, ok := parseDate(w, req, loc)
			if !ok {
				return
			}
			sign, ok := resolveSign(w, req, repoAdapter)
			if !ok {
				return
			}
			metrics.IncRankRequest(sign)
			rank, err := ranker.Rank(req.Context(), day(date, loc), sign)
			if errors.Is(err, statsusecase.ErrNotRanked) {
				httpinfra.WriteError(w, http.StatusNotFound, "знак не участвует в рейтинге за эту дату")
				return
			}
			if err != nil {
				logger.Error().Err(err).Msg("api: ошибка рейтинга")
				httpinfra.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}
			httpinfra.WriteJSON(w, http.StatusOK, rankResponse(rank))
		})

		r.Get("/zodiac/leaderboard", func(w http.ResponseWriter, req *http.Request) {
			date, ok := parseDate(w, req, loc)
			if !ok {
				return
			}
			board, err := ranker.Leaderboard(req.Context(), day(date, loc))
			if err != nil {
				logger.Error().Err(err).Msg("api: ошибка рейтинга")
				httpinfra.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}
			entries := make([]map[string]any, 0, len(board))
			for _, entry := range board {
				entries = append(entries, rankResponse(entry))
			}
			httpinfra.WriteJSON(w, http.StatusOK, map[string]any{"date": day(date, loc).Format(dateLayout), "ranking": entries})
		})
	})

	go func() {
		if err := srv.Start(":" + strconv.Itoa(cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api: HTTP сервер остановлен")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: ошибка остановки")
	}
}

func day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate читает необязательный параметр date (YYYY-MM-DD), по умолчанию — сейчас.
// Явная дата трактуется как календарный день в опорном поясе, иначе при поясе
// западнее UTC запрос за 2025-06-01 уехал бы на строку 2025-05-31.
func parseDate(w http.ResponseWriter, req *http.Request, loc *time.Location) (time.Time, bool) {
	raw := req.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		httpinfra.WriteError(w, http.StatusBadRequest, "дата должна быть в формате YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// resolveSign определяет знак из параметра sign или по профилю user_id.
func resolveSign(w http.ResponseWriter, req *http.Request, users domain.UserDirectory) (string, bool) {
	sign := req.URL.Query().Get("sign")
	if sign != "" {
		if !domain.IsZodiacSign(sign) {
			httpinfra.WriteError(w, http.StatusBadRequest, "неизвестный знак")
			return "", false
		}
		return sign, true
	}
	userID := req.URL.Query().Get("user_id")
	if userID == "" {
		httpinfra.WriteError(w, http.StatusBadRequest, "нужен параметр sign или user_id")
		return "", false
	}
	profile, found, err := users.GetProfile(req.Context(), userID)
	if err != nil {
		httpinfra.WriteError(w, http.StatusInternalServerError, "internal error")
		return "", false
	}
	if !found || profile.BirthYear == 0 {
		httpinfra.WriteError(w, http.StatusNotFound, "пользователь не классифицирован")
		return "", false
	}
	sign, err = domain.ZodiacSign(profile.BirthYear)
	if err != nil {
		httpinfra.WriteError(w, http.StatusNotFound, "пользователь не классифицирован")
		return "", false
	}
	return sign, true
}

func writeFortuneError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	switch {
	case errors.Is(err, fortuneusecase.ErrInvalidUserID), errors.Is(err, fortuneusecase.ErrInvalidDate):
		httpinfra.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fortuneusecase.ErrFortuneDisabled):
		httpinfra.WriteError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error().Err(err).Msg("api: ошибка генерации")
		httpinfra.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func fortuneResponse(f domain.DailyFortune) map[string]any {
	return map[string]any{
		"user_id":         f.UserID,
		"date":            f.Date.Format(dateLayout),
		"overall_luck":    f.OverallLuck,
		"wealth_luck":     f.WealthLuck,
		"lottery_luck":    f.LotteryLuck,
		"lucky_numbers":   f.LuckyNumbers,
		"lucky_color":     f.LuckyColor,
		"lucky_direction": f.LuckyDirection,
		"message":         f.Message,
		"advice":          f.Advice,
	}
}

func rankResponse(r domain.ZodiacRank) map[string]any {
	return map[string]any{
		"sign":        r.Sign,
		"position":    r.Position,
		"total_signs": r.TotalSigns,
		"percentile":  r.Percentile,
		"avg_overall": r.AvgOverall,
		"avg_lottery": r.AvgLottery,
	}
}
