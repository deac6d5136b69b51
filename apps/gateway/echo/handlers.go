package echogw

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/connectivity"
)

type statusResponse struct {
	IsOnline       bool   `json:"isOnline"`
	EffectiveType  string `json:"effectiveType"`
	Quality        string `json:"quality"`
	PendingActions int    `json:"pendingActions"`
}

type connectivityRequest struct {
	IsOnline      bool    `json:"isOnline"`
	EffectiveType string  `json:"effectiveType"`
	DownlinkMbps  float64 `json:"downlinkMbps"`
	RTTMs         float64 `json:"rttMs"`
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

func (s *server) status(ctx echo.Context) error {
	state := s.deps.Monitor.Current()
	pending, err := s.replay.PendingCount(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting pending actions")
	}
	return ctx.JSON(http.StatusOK, statusResponse{
		IsOnline:       state.IsOnline,
		EffectiveType:  string(state.EffectiveType),
		Quality:        state.Quality().String(),
		PendingActions: pending,
	})
}

// backgroundSync is the portal's sync trigger; the drain runs out of band
// and the caller polls /internal/status for progress.
func (s *server) backgroundSync(ctx echo.Context) error {
	go func() {
		if _, err := s.replay.Replay(context.Background()); err != nil {
			s.deps.Logger.Error("gateway: background sync failed", err)
		}
	}()
	return ctx.JSON(http.StatusAccepted, echo.Map{"started": true})
}

// connectivitySignal receives the front end's Network Information readings.
func (s *server) connectivitySignal(ctx echo.Context) error {
	var req connectivityRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.deps.Monitor.SetState(connectivity.State{
		IsOnline:      req.IsOnline,
		EffectiveType: connectivity.EffectiveType(req.EffectiveType),
		DownlinkMbps:  req.DownlinkMbps,
		RTTms:         int(req.RTTMs),
	})
	return ctx.NoContent(http.StatusNoContent)
}

// visibilitySignal mirrors the page's visibilitychange events so the
// preloader only works while the portal tab is in the foreground.
func (s *server) visibilitySignal(ctx echo.Context) error {
	var req visibilityRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if s.deps.Preloader != nil {
		s.deps.Preloader.SetVisible(req.Visible)
	}
	return ctx.NoContent(http.StatusNoContent)
}
