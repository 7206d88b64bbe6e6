package prediction

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/liver-report/internal/middleware"
	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/internal/presenter"
	"github.com/jwalitptl/liver-report/internal/service/prediction"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
	"github.com/jwalitptl/liver-report/pkg/httputil"
)

type Handler struct {
	service prediction.PredictionService
}

func NewHandler(service prediction.PredictionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/predictions", h.Submit)
	r.POST("/reports", h.Download)
	r.DELETE("/session", h.EndSession)
}

// Submit runs a prediction for the posted form and caches it in the
// caller's session.
func (h *Handler) Submit(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Internal(nil), "")
		return
	}

	var in model.FormInput
	if err := c.ShouldBindJSON(&in); err != nil {
		err = apperrors.BadRequest("invalid form body", err)
		httputil.RespondWithError(c, err, presenter.Message(prediction.OpSubmit, err))
		return
	}

	out, err := h.service.Submit(c.Request.Context(), sess, in)
	if err != nil {
		httputil.RespondWithError(c, err, presenter.Message(prediction.OpSubmit, err))
		return
	}
	httputil.RespondWithSuccess(c, out)
}

// Download streams the report for the session's cached prediction.
func (h *Handler) Download(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Internal(nil), "")
		return
	}

	rep, err := h.service.Download(c.Request.Context(), sess)
	if err != nil {
		httputil.RespondWithError(c, err, presenter.Message(prediction.OpDownload, err))
		return
	}
	httputil.RespondWithFile(c, rep.Filename, rep.ContentType, rep.Data)
}

func (h *Handler) EndSession(c *gin.Context) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Internal(nil), "")
		return
	}
	if err := sess.End(c.Request.Context()); err != nil {
		httputil.RespondWithError(c, apperrors.Storage(err), "")
		return
	}
	c.Status(http.StatusNoContent)
}
