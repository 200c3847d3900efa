package httpapi

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"politrades/internal/models"
	"politrades/internal/query"
	"politrades/internal/state"
)

const defaultLimit = 10

func limitParam(c *gin.Context) (int, error) {
	raw := c.Query("n")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("n must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) language() models.Language {
	return s.stores.Preferences.Snapshot().Language
}

func (s *Server) searchPoliticians(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.SearchPoliticians(c.Query("q")))
}

func (s *Server) getPolitician(c *gin.Context) {
	p, ok := s.engine.Politician(c.Param("id"))
	if !ok {
		notFound(c, "politician")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"politician": p,
		"following":  s.stores.Watchlist.IsFollowing(p.ID),
	})
}

func (s *Server) politicianTrades(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.engine.Politician(id); !ok {
		notFound(c, "politician")
		return
	}
	c.JSON(http.StatusOK, s.engine.TradesByPolitician(id))
}

func (s *Server) searchTickers(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.SearchTickers(c.Query("q")))
}

func (s *Server) tickerMovers(c *gin.Context) {
	n, err := limitParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.TopTickerMovers(n))
}

func (s *Server) getTicker(c *gin.Context) {
	tk, ok := s.engine.Ticker(c.Param("symbol"))
	if !ok {
		notFound(c, "ticker")
		return
	}
	c.JSON(http.StatusOK, tk)
}

func (s *Server) tickerTrades(c *gin.Context) {
	symbol := c.Param("symbol")
	if _, ok := s.engine.Ticker(symbol); !ok {
		notFound(c, "ticker")
		return
	}
	c.JSON(http.StatusOK, s.engine.TradesByTicker(symbol))
}

func (s *Server) tradeFilter(c *gin.Context) (query.TradeFilter, error) {
	typ, err := query.ParseTypeFilter(c.Query("type"))
	if err != nil {
		return query.TradeFilter{}, err
	}
	period, err := query.ParsePeriod(c.Query("period"))
	if err != nil {
		return query.TradeFilter{}, err
	}
	return query.TradeFilter{Type: typ, Period: period, Text: c.Query("q")}, nil
}

func (s *Server) feed(c *gin.Context) {
	f, err := s.tradeFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.Feed(f, s.now(), s.language()))
}

func (s *Server) followedFeed(c *gin.Context) {
	f, err := s.tradeFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	w := s.stores.Watchlist.Snapshot()
	c.JSON(http.StatusOK, s.engine.FollowedFeed(w.FollowedPoliticians, w.FollowedSectors, f, s.now(), s.language()))
}

func (s *Server) recentTrades(c *gin.Context) {
	n, err := limitParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.RecentTrades(n))
}

func (s *Server) topMovers(c *gin.Context) {
	n, err := limitParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.engine.TopMovers(n))
}

func (s *Server) getTrade(c *gin.Context) {
	t, ok := s.engine.Trade(c.Param("id"))
	if !ok {
		notFound(c, "trade")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) relatedTrades(c *gin.Context) {
	n, err := limitParam(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	if _, ok := s.engine.Trade(id); !ok {
		notFound(c, "trade")
		return
	}
	c.JSON(http.StatusOK, s.engine.RelatedTrades(id, n))
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.stores.Preferences.Snapshot())
}

type settingsPatch struct {
	Language               *string          `json:"language"`
	NotificationsEnabled   *bool            `json:"notificationsEnabled"`
	AlertThreshold         *decimal.Decimal `json:"alertThreshold"`
	HasCompletedOnboarding *bool            `json:"hasCompletedOnboarding"`
}

func (s *Server) patchSettings(c *gin.Context) {
	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	// Validate every field before mutating anything.
	var lang models.Language
	if patch.Language != nil {
		parsed, err := models.ParseLanguage(*patch.Language)
		if err != nil {
			badRequest(c, err)
			return
		}
		lang = parsed
	}
	if patch.AlertThreshold != nil && patch.AlertThreshold.IsNegative() {
		badRequest(c, fmt.Errorf("alert threshold cannot be negative"))
		return
	}

	prefs := s.stores.Preferences
	if patch.Language != nil {
		if err := prefs.SetLanguage(lang); err != nil {
			badRequest(c, err)
			return
		}
	}
	if patch.AlertThreshold != nil {
		if err := prefs.SetAlertThreshold(*patch.AlertThreshold); err != nil {
			badRequest(c, err)
			return
		}
	}
	if patch.NotificationsEnabled != nil {
		prefs.SetNotificationsEnabled(*patch.NotificationsEnabled)
	}
	if patch.HasCompletedOnboarding != nil {
		prefs.SetHasCompletedOnboarding(*patch.HasCompletedOnboarding)
	}
	c.JSON(http.StatusOK, prefs.Snapshot())
}

func (s *Server) getGate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"route": state.EvaluateGate(s.stores.Preferences.Snapshot())})
}

func (s *Server) getUI(c *gin.Context) {
	c.JSON(http.StatusOK, s.stores.UI.Snapshot())
}

func (s *Server) getWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, s.stores.Watchlist.Snapshot())
}

func (s *Server) followPolitician(c *gin.Context) {
	p, ok := s.engine.Politician(c.Param("id"))
	if !ok {
		notFound(c, "politician")
		return
	}
	s.stores.Watchlist.AddFollowedPolitician(p.ID)
	s.stores.UI.ShowToast("Following "+p.Name, state.ToastSuccess)
	c.JSON(http.StatusOK, s.stores.Watchlist.Snapshot())
}

func (s *Server) unfollowPolitician(c *gin.Context) {
	s.stores.Watchlist.RemoveFollowedPolitician(c.Param("id"))
	c.JSON(http.StatusOK, s.stores.Watchlist.Snapshot())
}

func (s *Server) followSector(c *gin.Context) {
	sector := c.Param("sector")
	if !slices.Contains(s.engine.Sectors(), sector) {
		notFound(c, "sector")
		return
	}
	s.stores.Watchlist.AddFollowedSector(sector)
	s.stores.UI.ShowToast("Following "+sector, state.ToastSuccess)
	c.JSON(http.StatusOK, s.stores.Watchlist.Snapshot())
}

func (s *Server) unfollowSector(c *gin.Context) {
	s.stores.Watchlist.RemoveFollowedSector(c.Param("sector"))
	c.JSON(http.StatusOK, s.stores.Watchlist.Snapshot())
}

