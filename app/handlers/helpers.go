package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// respondError maps any error onto the taxonomy's status and localized
// message. Internals are logged, never echoed to the client.
func respondError(rnd *render.Render, w http.ResponseWriter, err error) {
	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	_ = rnd.JSON(w, status, map[string]string{"message": apperrors.MessageOf(err)})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Validation("ข้อมูลที่ส่งมาไม่ถูกต้อง")
	}
	return nil
}

// pagination reads ?page and ?limit, returning limit and offset.
func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return limit, (page - 1) * limit
}

type pagedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
}
