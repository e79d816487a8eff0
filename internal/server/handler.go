/*
   Copyright (C) 2023 eLife Sciences

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package server exposes the charts over HTTP. Each session owns one
// controller per chart; interactions arrive as requests and the chart is
// fetched back as animated SVG.
package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"ivy-charts/internal/charts"
	"ivy-charts/internal/scene"
	"ivy-charts/internal/view"
)

// DefaultSessionTTL is how long a session may stay idle before it is dropped.
const DefaultSessionTTL = 30 * time.Minute

type Handler struct {
	Charts []*charts.Chart
	// LoadErr is the dataset load failure, if any. While set, every chart
	// endpoint answers 503.
	LoadErr error
	// Width is the container width used when a request does not pass ?width=.
	Width float64
	Log   klog.Logger
	// SessionTTL is the idle time after which a session is dropped. Zero keeps
	// sessions until they are deleted.
	SessionTTL time.Duration

	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	controllers map[string]*view.Controller
	seen        time.Time
}

func NewHandler(cs []*charts.Chart, width float64, loadErr error, log klog.Logger) *Handler {
	return &Handler{
		Charts:     cs,
		LoadErr:    loadErr,
		Width:      width,
		Log:        log,
		SessionTTL: DefaultSessionTTL,
		now:        time.Now,
		sessions:   map[string]*session{},
	}
}

// expire drops sessions idle for longer than SessionTTL. Callers hold mu.
func (h *Handler) expire() {
	if h.SessionTTL <= 0 {
		return
	}
	cutoff := h.now().Add(-h.SessionTTL)
	for id, s := range h.sessions {
		if s.seen.Before(cutoff) {
			delete(h.sessions, id)
			h.Log.V(1).Info("session expired", "session", id)
		}
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/charts", h.list)
	rg.POST("/sessions", h.createSession)
	rg.DELETE("/sessions/:id", h.deleteSession)

	chart := rg.Group("/sessions/:id/charts/:chart")
	chart.GET("", h.svg)
	chart.GET("/state", h.state)
	chart.POST("/toggle/:school", h.toggle)
	chart.POST("/reset", h.reset)
	chart.POST("/highlight/:school", h.highlight)
	chart.POST("/pin/:school", h.pin)
	chart.PUT("/max-year", h.maxYear)
	chart.PUT("/year", h.year)
}

func (h *Handler) health(c *gin.Context) {
	status := "ok"
	body := gin.H{"charts": len(h.Charts)}
	if h.LoadErr != nil {
		status = "degraded"
		body["error"] = h.LoadErr.Error()
	}
	body["status"] = status
	c.JSON(http.StatusOK, body)
}

func (h *Handler) list(c *gin.Context) {
	items := []gin.H{}
	for _, ch := range h.Charts {
		o := ch.Options()
		items = append(items, gin.H{
			"name":     o.Name,
			"kind":     o.Kind,
			"title":    o.Title,
			"selector": o.Selector,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "ready": h.LoadErr == nil})
}

func (h *Handler) unavailable(c *gin.Context) bool {
	if h.LoadErr == nil {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": h.LoadErr.Error()})
	return true
}

func (h *Handler) createSession(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	s := &session{controllers: map[string]*view.Controller{}}
	names := []string{}
	for _, ch := range h.Charts {
		s.controllers[ch.Name()] = view.NewController(ch, h.Width)
		names = append(names, ch.Name())
	}
	id := uuid.NewString()

	h.mu.Lock()
	h.expire()
	s.seen = h.now()
	h.sessions[id] = s
	h.mu.Unlock()

	h.Log.V(1).Info("session created", "session", id)
	c.JSON(http.StatusCreated, gin.H{"id": id, "charts": names})
}

func (h *Handler) deleteSession(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// controller resolves the session and chart of the request and applies
// ?width= when it changed. It writes the error response itself.
func (h *Handler) controller(c *gin.Context) (*view.Controller, bool) {
	if h.unavailable(c) {
		return nil, false
	}
	h.mu.Lock()
	h.expire()
	s, ok := h.sessions[c.Param("id")]
	if ok {
		s.seen = h.now()
	}
	h.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	ctl, ok := s.controllers[c.Param("chart")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
		return nil, false
	}

	if raw := strings.TrimSpace(c.Query("width")); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width must be a positive number"})
			return nil, false
		}
		if w != ctl.Width() {
			if _, err := ctl.Resize(w); err != nil {
				h.fail(c, err)
				return nil, false
			}
		}
	}
	return ctl, true
}

func (h *Handler) svg(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	f, err := ctl.Frame()
	if err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := scene.WriteSVG(&buf, f.Scene, f.Plan); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

func (h *Handler) state(c *gin.Context) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctl.State())
}

func (h *Handler) toggle(c *gin.Context) {
	h.apply(c, func(ctl *view.Controller) (view.Frame, error) {
		return ctl.Toggle(c.Param("school"))
	})
}

func (h *Handler) reset(c *gin.Context) {
	h.apply(c, (*view.Controller).Reset)
}

func (h *Handler) highlight(c *gin.Context) {
	h.apply(c, func(ctl *view.Controller) (view.Frame, error) {
		return ctl.Highlight(c.Param("school"))
	})
}

func (h *Handler) pin(c *gin.Context) {
	h.apply(c, func(ctl *view.Controller) (view.Frame, error) {
		return ctl.Pin(c.Param("school"))
	})
}

func (h *Handler) maxYear(c *gin.Context) {
	year, err := strconv.Atoi(strings.TrimSpace(c.Query("value")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a year"})
		return
	}
	h.apply(c, func(ctl *view.Controller) (view.Frame, error) {
		return ctl.SetMaxYear(year)
	})
}

func (h *Handler) year(c *gin.Context) {
	label := strings.TrimSpace(c.Query("value"))
	if label == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value required"})
		return
	}
	h.apply(c, func(ctl *view.Controller) (view.Frame, error) {
		return ctl.SelectYear(label)
	})
}

// apply runs one interaction and answers with the new state and a summary of
// the transition.
func (h *Handler) apply(c *gin.Context, op func(*view.Controller) (view.Frame, error)) {
	ctl, ok := h.controller(c)
	if !ok {
		return
	}
	f, err := op(ctl)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  f.State,
		"enter":  f.Plan.Count(scene.Enter),
		"update": f.Plan.Count(scene.Update),
		"exit":   f.Plan.Count(scene.Exit),
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, view.ErrUnknownSchool) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.Log.Error(err, "chart request failed", "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
