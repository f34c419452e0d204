package server

import (
	"net/http"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/autosave"
	"github.com/ByLCY/keepsake/design"
)

type draftResponse struct {
	Found    bool             `json:"found"`
	Document *design.Document `json:"document,omitempty"`
}

func (h *handler) draftSlot(w http.ResponseWriter, r *http.Request) (*autosave.Service, bool) {
	if h.Drafts == nil {
		writeError(r.Context(), h.Logger, w, apperrors.New(apperrors.CodeDependency, "未配置草稿存储"))
		return nil, false
	}
	return h.Drafts.Slot(clientID(w, r)), true
}

// loadDraft 取回上次自动保存的设计；位图字段在恢复时已剔除，二维码会重新生成。
func (h *handler) loadDraft(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.draftSlot(w, r)
	if !ok {
		return
	}
	doc, found := slot.Load(r.Context())
	if !found {
		writeSuccess(w, draftResponse{})
		return
	}
	writeSuccess(w, draftResponse{Found: true, Document: &doc})
}

// saveDraft 尽力保存；存储失败只记录日志，接口仍返回 202。
func (h *handler) saveDraft(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.draftSlot(w, r)
	if !ok {
		return
	}
	var doc design.Document
	if err := decodeJSONBody(r, &doc); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	slot.Save(r.Context(), doc)
	writeSuccessStatus(w, http.StatusAccepted, map[string]string{"key": slot.Key()})
}

func (h *handler) clearDraft(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.draftSlot(w, r)
	if !ok {
		return
	}
	slot.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
