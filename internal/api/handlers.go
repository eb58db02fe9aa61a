package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/errx"
	"github.com/talgya/cardcity/internal/logs"
)

// errorBody is the response for any failed request.
type errorBody struct {
	Code    errx.Code `json:"code"`
	Message string    `json:"message"`
	Reason  string    `json:"reason,omitempty"`
}

// describe maps an error to its HTTP status and response body.
func describe(err error) (int, errorBody) {
	var xe *errx.Error
	if !errors.As(err, &xe) {
		xe = errx.ErrInternal.WithCause(err)
	}

	status := http.StatusInternalServerError
	switch xe.Code() {
	case errx.CodeInvalidIntent, errx.CodeReqParamError:
		status = http.StatusBadRequest
	case errx.CodeNotFound:
		status = http.StatusNotFound
	}
	return status, errorBody{Code: xe.Code(), Message: xe.Msg(), Reason: xe.Reason()}
}

func fail(c *gin.Context, err error) {
	status, body := describe(err)
	if status == http.StatusInternalServerError {
		logs.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshot())
}

func (s *Server) handleIntent(c *gin.Context) {
	var in engine.Intent
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, errx.ErrReqParamERR.WithData("reason", "malformed intent").WithCause(err))
		return
	}

	events, snap, err := s.apply(in)
	if err != nil {
		fail(c, err)
		return
	}
	if events == nil {
		events = []engine.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "events": events, "state": snap})
}

func (s *Server) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"actions":  catalog.Actions(),
		"citizens": catalog.Citizens(),
		"starting": catalog.StartingCitizens,
	})
}

func (s *Server) handleSave(c *gin.Context) {
	if s.store == nil {
		fail(c, errx.ErrNotFound.WithData("reason", "saves disabled"))
		return
	}

	s.mu.Lock()
	started := s.eng.Started()
	st := s.eng.State()
	s.mu.Unlock()

	if !started {
		fail(c, errx.ErrInvalidIntent.WithReason(engine.ReasonNoGame))
		return
	}
	if err := s.store.Save(st); err != nil {
		fail(c, fmt.Errorf("save game: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "id": st.ID.String()})
}

func (s *Server) handleSaves(c *gin.Context) {
	if s.store == nil {
		fail(c, errx.ErrNotFound.WithData("reason", "saves disabled"))
		return
	}
	list, err := s.store.List()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "saves": list})
}

func (s *Server) handleLoad(c *gin.Context) {
	if s.store == nil {
		fail(c, errx.ErrNotFound.WithData("reason", "saves disabled"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, errx.ErrReqParamERR.WithData("reason", "bad game id").WithCause(err))
		return
	}
	st, err := s.store.Load(id)
	if err != nil {
		fail(c, err)
		return
	}
	eng, err := engine.Restore(st, nil)
	if err != nil {
		fail(c, errx.ErrInternal.WithCause(err))
		return
	}
	snap := s.replace(eng)
	c.JSON(http.StatusOK, gin.H{"code": 0, "state": snap})
}
