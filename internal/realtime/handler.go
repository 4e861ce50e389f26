package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// WSHandler returns the echo handler upgrading HTTP requests on the
// realtime path. Cross-origin upgrades are restricted to the single
// configured origin; same-origin requests (no Origin header) always pass.
func WSHandler(hub *Hub, gateway *Gateway, allowOrigin string, logger zerolog.Logger) echo.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowOrigin
		},
	}

	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return err
		}
		NewClient(hub, gateway, conn, logger).Start()
		return nil
	}
}
