package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viorelmirea/provocations-backend/internal/content"
	"github.com/viorelmirea/provocations-backend/internal/platform/logger"
	"github.com/viorelmirea/provocations-backend/internal/services"
	"github.com/viorelmirea/provocations-backend/internal/types"
)

type RegenerateHandler struct {
	log     *logger.Logger
	index   *content.Index
	service services.RegenerationService
}

func NewRegenerateHandler(baseLog *logger.Logger, index *content.Index, service services.RegenerationService) *RegenerateHandler {
	return &RegenerateHandler{
		log:     baseLog.With("handler", "RegenerateHandler"),
		index:   index,
		service: service,
	}
}

type concernRequest struct {
	Concern types.Concern `json:"concern"`
}

// parseRequest resolves the kind route param and the posted concern, and
// checks the concern against the authored content set. Completions only ever
// reference concerns that exist, because this is the sole write entry point.
func (h *RegenerateHandler) parseRequest(c *gin.Context) (types.ContentKind, types.Concern, bool) {
	kind, err := types.ParseContentKind(c.Param("kind"))
	if err != nil {
		RespondFail(c, CodeUnknownKind)
		return "", types.Concern{}, false
	}
	var body concernRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Concern.ID == "" {
		RespondFail(c, CodeInvalidRequest)
		return "", types.Concern{}, false
	}
	if !h.index.Has(kind, body.Concern.ID) {
		h.log.Debug("Concern not in content set", "kind", kind, "concern_id", body.Concern.ID)
		RespondFail(c, CodeUnknownConcern)
		return "", types.Concern{}, false
	}
	return kind, body.Concern, true
}

// Regenerate handles POST /api/regenerate/:kind. A failed generation falls
// back to one stored-completion pick; that is the only retry the caller gets.
func (h *RegenerateHandler) Regenerate(c *gin.Context) {
	kind, concern, ok := h.parseRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := h.service.Regenerate(ctx, kind, concern)
	if errors.Is(err, services.ErrGenerationFailed) {
		h.log.Warn("Generation failed, recycling stored completion", "kind", kind, "concern_id", concern.ID)
		result, err = h.service.PickStored(ctx, kind, concern)
	}
	if err != nil {
		RespondFail(c, errorCode(err))
		return
	}
	RespondOK(c, result)
}

// ListCompletions handles POST /api/completions/:kind, returning every
// stored completion for the posted concern.
func (h *RegenerateHandler) ListCompletions(c *gin.Context) {
	kind, concern, ok := h.parseRequest(c)
	if !ok {
		return
	}

	completions, err := h.service.ListCompletions(c.Request.Context(), kind, concern)
	if err != nil {
		RespondFail(c, errorCode(err))
		return
	}
	if completions == nil {
		completions = []*types.Completion{}
	}
	RespondOK(c, completions)
}
