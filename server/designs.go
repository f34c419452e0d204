package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ByLCY/keepsake/apperrors"
	"github.com/ByLCY/keepsake/design"
	"github.com/ByLCY/keepsake/editor"
	"github.com/ByLCY/keepsake/layout"
	"github.com/ByLCY/keepsake/qr"
)

type designRequest struct {
	Document design.Document `json:"document"`
	View     string          `json:"view" validate:"omitempty,oneof=front back"`
}

type qrRequest struct {
	URL string `json:"url" validate:"required,url,max=2048"`
}

func (h *handler) session(doc design.Document) *editor.Session {
	return editor.NewSession(doc, editor.Options{
		Typesetter: h.Painter,
		Previewer:  h.Painter,
		Logger:     h.Logger,
	})
}

func (h *handler) previewDesign(w http.ResponseWriter, r *http.Request) {
	var req designRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	s := h.session(req.Document)
	s.SetView(layout.ParseView(req.View))
	png, err := s.Preview(r.Context())
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeFile(w, "image/png", "", png)
}

func (h *handler) layoutDesign(w http.ResponseWriter, r *http.Request) {
	var req designRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	s := h.session(req.Document)
	s.SetView(layout.ParseView(req.View))
	res, err := s.Resolve()
	if err != nil {
		writeError(r.Context(), h.Logger, w, apperrors.Wrap(apperrors.CodeValidation, err, "解析布局失败"))
		return
	}
	var buf bytes.Buffer
	if err := layout.EncodeDebugJSON(&buf, res); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) exportDesign(w http.ResponseWriter, r *http.Request) {
	var doc design.Document
	if err := decodeJSONBody(r, &doc); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	art, err := h.Export.Card(r.Context(), doc)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeFile(w, "application/pdf", art.Filename, art.Data)
}

func (h *handler) exportPrint(w http.ResponseWriter, r *http.Request) {
	var p design.PhotoPrint
	if err := decodeJSONBody(r, &p); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	art, err := h.Export.MemorialPrint(r.Context(), p)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeFile(w, "application/pdf", art.Filename, art.Data)
}

func (h *handler) qrCode(w http.ResponseWriter, r *http.Request) {
	var req qrRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	png, err := qr.PNG(req.URL)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeFile(w, "image/png", "", png)
}

// uploadAsset 接收原始图片字节，按内容判断类型后保存，返回可写入设计的引用。
func (h *handler) uploadAsset(w http.ResponseWriter, r *http.Request) {
	if h.Assets == nil {
		writeError(r.Context(), h.Logger, w, apperrors.New(apperrors.CodeDependency, "未配置素材库"))
		return
	}
	folder := chi.URLParam(r, "folder")
	switch folder {
	case "photos", "logos", "prints":
	default:
		writeError(r.Context(), h.Logger, w, apperrors.Validation("不支持的目录 %q", folder))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxUploadBytes))
	if err != nil {
		writeError(r.Context(), h.Logger, w, apperrors.Wrap(apperrors.CodeValidation, err, "读取上传内容失败"))
		return
	}
	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	ref, err := h.Assets.Save(r.Context(), folder, filename, data)
	if err != nil {
		writeError(r.Context(), h.Logger, w, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, map[string]string{"ref": ref})
}
