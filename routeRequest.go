package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"ffxiv_cadence/analysispool"
	"ffxiv_cadence/report"
	"ffxiv_cadence/share"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	websocketUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

const recaptchaHeader = "X-Recaptcha-Token"

type server struct {
	svc  *analysispool.Service
	pool *analysispool.Pool

	// confirm checks a reCAPTCHA token. nil disables the check.
	confirm func(remoteAddr string, token string) (bool, error)
}

func (s *server) confirmed(c *gin.Context, token string) bool {
	if s.confirm == nil {
		return true
	}
	ok, err := s.confirm(remoteAddr(c), token)
	if err != nil {
		fmt.Printf("%+v\n", errors.WithStack(err))
		return false
	}
	return ok
}

func (s *server) Route(g *gin.Engine) {
	g.Use(gin.ErrorLogger())
	g.Use(gin.Recovery())

	g.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	g.GET("/analysis", s.routeRequest)
	g.POST("/api/analyze", s.routeAnalyze)
}

func remoteAddr(c *gin.Context) string {
	var remoteAddr string
	if v := c.GetHeader("X-Forwarded-For"); v != "" {
		remoteAddr = v
	}
	if remoteAddr == "" {
		if v := c.GetHeader("X-Real-Ip"); v != "" {
			remoteAddr = v
		}
	}
	if remoteAddr == "" {
		remoteAddr = c.Request.RemoteAddr
		if idx := strings.LastIndexByte(remoteAddr, ':'); idx >= 0 {
			remoteAddr = remoteAddr[:idx]
		}
	}
	return remoteAddr
}

func (s *server) routeRequest(c *gin.Context) {
	ws, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		fmt.Printf("%+v\n", errors.WithStack(err))
		return
	}

	if s.confirm != nil {
		ws.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			fmt.Printf("%+v\n", errors.WithStack(err))
			ws.Close()
			return
		}

		if !s.confirmed(c, string(msg)) {
			ws.Close()
			return
		}
	}

	s.pool.Do(c.Request.Context(), ws)
}

func (s *server) routeAnalyze(c *gin.Context) {
	if s.confirm != nil {
		token := c.GetHeader(recaptchaHeader)
		if token == "" || !s.confirmed(c, token) {
			c.JSON(http.StatusForbidden, gin.H{"error": "recaptcha"})
			return
		}
	}

	var req analysispool.Request
	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stat, err := s.svc.Analyze(c.Request.Context(), &req, nil)
	if err != nil {
		switch {
		case errors.Is(err, analysispool.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case share.IsContextClosedError(err):
			c.Status(http.StatusRequestTimeout)
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	if req.Format == "text" {
		c.Header("Content-Type", "text/plain; charset=utf-8")
	} else {
		c.Header("Content-Type", "application/json; charset=utf-8")
	}
	c.Status(http.StatusOK)

	err = report.Render(c.Writer, stat, req.Format)
	if err != nil {
		fmt.Printf("%+v\n", errors.WithStack(err))
	}
}
