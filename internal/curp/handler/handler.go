package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"curpkit/internal/curp/models"
	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
	"curpkit/pkg/platform/httputil"
	"curpkit/pkg/requestcontext"
)

// Service defines the CURP operations exposed over HTTP.
type Service interface {
	Encode(ctx context.Context, id curp.Identity) (*models.EncodeResult, error)
	Validate(ctx context.Context, id curp.Identity, candidate string, mode models.ValidateMode) (*models.ValidateResult, error)
	NameMatch(ctx context.Context, q models.NameQuery) (bool, error)
	Parse(ctx context.Context, code string) (curp.Code, error)
	EncodeBatch(ctx context.Context, ids []curp.Identity) ([]models.BatchResult, error)
	Entities() []curp.EntityInfo
}

// Handler serves the /curp endpoints.
type Handler struct {
	service       Service
	logger        *slog.Logger
	maxBatchItems int
}

// New creates a Handler. maxBatchItems bounds the items accepted per batch
// request before any item is parsed.
func New(service Service, logger *slog.Logger, maxBatchItems int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger, maxBatchItems: maxBatchItems}
}

// Register registers the CURP routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/curp/encode", h.HandleEncode)
	r.Post("/curp/validate", h.HandleValidate)
	r.Post("/curp/name-match", h.HandleNameMatch)
	r.Post("/curp/parse", h.HandleParse)
	r.Post("/curp/batch", h.HandleBatch)
	r.Get("/curp/entities", h.HandleEntities)
}

func (h *Handler) HandleEncode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EncodeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Encode(ctx, req.Identity())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to encode curp")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEncodeResponse(res))
}

func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Validate(ctx, req.Identity(), req.Code, req.mode)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to validate curp")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ValidateResponse{Valid: res.Valid, WellFormed: res.WellFormed})
}

func (h *Handler) HandleNameMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[NameMatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	matched, err := h.service.NameMatch(ctx, req.Query())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to match names")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NameMatchResponse{Match: matched})
}

func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ParseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	code, err := h.service.Parse(ctx, req.Code)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to parse curp")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toParseResponse(code))
}

func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if h.maxBatchItems > 0 && len(req.Items) > h.maxBatchItems {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "too many items"))
		return
	}

	resp := BatchResponse{Results: make([]BatchItemResponse, len(req.Items))}
	ids := make([]curp.Identity, 0, len(req.Items))
	positions := make([]int, 0, len(req.Items))
	for i := range req.Items {
		if err := req.Items[i].Validate(); err != nil {
			resp.Results[i] = batchItemError(i, err)
			resp.Failed++
			continue
		}
		ids = append(ids, req.Items[i].Identity())
		positions = append(positions, i)
	}

	if len(ids) > 0 {
		results, err := h.service.EncodeBatch(ctx, ids)
		if err != nil {
			h.writeServiceError(ctx, w, err, "failed to process batch")
			return
		}
		for _, res := range results {
			index := positions[res.Index]
			if res.Err != nil {
				resp.Results[index] = batchItemError(index, res.Err)
				resp.Failed++
				continue
			}
			resp.Results[index] = BatchItemResponse{Index: index, Code: res.Code.String()}
		}
	}

	h.logger.InfoContext(ctx, "curp batch processed",
		"request_id", requestID,
		"items", len(req.Items),
		"failed", resp.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleEntities(w http.ResponseWriter, r *http.Request) {
	entities := h.service.Entities()
	resp := EntitiesResponse{Entities: make([]EntityResponse, 0, len(entities))}
	for _, e := range entities {
		resp.Entities = append(resp.Entities, EntityResponse{Code: e.Code.String(), Name: e.Name})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.IsClientError(dErrors.CodeOf(err)) {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestID,
		"error", err,
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
