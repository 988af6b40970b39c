package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ewilliams-labs/jukebox/internal/core/domain"
	"github.com/ewilliams-labs/jukebox/internal/logging"
)

const defaultModelType = "song"

var validate = validator.New(validator.WithRequiredStructEnabled())

type recommendRequest struct {
	Songs     []string `json:"songs" validate:"required,min=1,dive,max=300"`
	ModelType string   `json:"model_type" validate:"omitempty,oneof=song playlist"`
}

type recommendResponse struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
}

// Recommend handles POST /api/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// blank form slots are dropped, not rejected
	songs := req.Songs[:0]
	for _, s := range req.Songs {
		if s = strings.TrimSpace(s); s != "" {
			songs = append(songs, s)
		}
	}
	req.Songs = songs
	if len(req.Songs) == 0 {
		writeErrorWithCode(w, http.StatusBadRequest, "No songs provided", errCodeInvalidInput)
		return
	}
	if req.ModelType == "" {
		req.ModelType = defaultModelType
	}
	if err := validate.Struct(req); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, validationMessage(err), errCodeInvalidInput)
		return
	}

	recs, err := h.svc.Recommend(r.Context(), req.ModelType, req.Songs)
	if err != nil {
		l := logging.Ctx(r.Context(), h.logger)
		if isClientError(err) {
			l.Debug().Err(err).Str("mode", req.ModelType).Strs("songs", req.Songs).Msg("recommendation rejected")
		} else {
			l.Error().Err(err).Str("mode", req.ModelType).Msg("recommendation failed")
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].StructField()
		switch {
		case field == "ModelType":
			return "Invalid model type"
		case strings.HasPrefix(field, "TrackIDs"):
			return "Invalid track_ids"
		}
	}
	return "Invalid songs"
}
