// Package handler はfiredetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/transport/http/dto"
	"fire_backend/internal/feature/firedetection/usecase"
)

// SessionHeader はセッションIDを運ぶリクエストヘッダーです。
const SessionHeader = "X-Session-ID"

// maxUploadBytes はマルチパート全体の上限です。画像上限にフォームのオーバーヘッド分を加えています。
const maxUploadBytes = usecase.MaxImageSize + 1<<20

// DetectionUsecase は火災検出のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DetectionUsecase interface {
	Detect(ctx context.Context, sessionID string, imageData []byte) (*entity.Analysis, error)
	AlertImage(ctx context.Context, eventID string) (string, error)
}

// ModeUsecase は検出モードのユースケースインターフェースを定義します。
type ModeUsecase interface {
	Status(ctx context.Context, sessionID string) (*entity.SessionState, error)
	SetMode(ctx context.Context, sessionID, mode string) (*entity.SessionState, error)
	Modes() []entity.Mode
}

// FireDetectionHandler は火災検出のHTTPリクエストを処理します。
type FireDetectionHandler struct {
	detection DetectionUsecase
	modes     ModeUsecase
}

// NewFireDetectionHandler はFireDetectionHandlerの新しいインスタンスを生成します。
func NewFireDetectionHandler(detection DetectionUsecase, modes ModeUsecase) *FireDetectionHandler {
	return &FireDetectionHandler{detection: detection, modes: modes}
}

// Detect は画像をアップロードして火災を判定します。
//
// エンドポイント: POST /v1/fire/detect
// Content-Type: multipart/form-data
// フィールド: image（PNG/JPEG/GIF/WebP/BMP、最大10MB）
func (h *FireDetectionHandler) Detect(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("アップロードサイズが上限を超過", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "image is too large"})
			return
		}
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "image file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read image"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to read image"})
		return
	}

	res, err := h.detection.Detect(c.Request.Context(), sid, imageData)
	if err != nil {
		h.fail(c, "火災検出に失敗", err)
		return
	}
	c.JSON(http.StatusOK, toDetectionResponse(res))
}

// AlertImage は注釈付きアラート画像を返します。
//
// エンドポイント: GET /v1/fire/alerts/:id/image
func (h *FireDetectionHandler) AlertImage(c *gin.Context) {
	path, err := h.detection.AlertImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "アラート画像の取得に失敗", err)
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.File(path)
}

// Status はセッションの火災数とモードを返します。
//
// エンドポイント: GET /v1/fire/status
func (h *FireDetectionHandler) Status(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}
	st, err := h.modes.Status(c.Request.Context(), sid)
	if err != nil {
		h.fail(c, "状態の取得に失敗", err)
		return
	}
	c.JSON(http.StatusOK, toStateResponse(st))
}

// SetMode は検出モードを切り替えます。
//
// エンドポイント: PUT /v1/fire/mode
// Content-Type: application/json
func (h *FireDetectionHandler) SetMode(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req dto.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("モード変更リクエストのバリデーションに失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "mode is required"})
		return
	}

	st, err := h.modes.SetMode(c.Request.Context(), sid, req.Mode)
	if err != nil {
		h.fail(c, "モード変更に失敗", err)
		return
	}
	c.JSON(http.StatusOK, toStateResponse(st))
}

// Modes は選択可能なモードの一覧を返します。
//
// エンドポイント: GET /v1/fire/modes
func (h *FireDetectionHandler) Modes(c *gin.Context) {
	modes := h.modes.Modes()
	out := make([]dto.ModeResponse, 0, len(modes))
	for _, m := range modes {
		out = append(out, dto.ModeResponse{
			Mode:            string(m),
			Label:           m.Label(),
			ModelConfidence: m.ModelConfidence(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// fail はドメインエラーをHTTPステータスに変換して応答します。
func (h *FireDetectionHandler) fail(c *gin.Context, msg string, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.Warn(msg, "error", err, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.ErrorResponse{Error: body})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyImage):
		return http.StatusBadRequest, "image data is empty"
	case errors.Is(err, domain.ErrInvalidImage), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrInvalidMode):
		return http.StatusBadRequest, "unknown detection mode"
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge, "image is too large"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported image format"
	case errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound, "fire event not found"
	case errors.Is(err, domain.ErrDetectorUnavailable):
		return http.StatusBadGateway, "fire detector is unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// sessionID はX-Session-IDヘッダーを検証して返します。未指定ならDefaultSessionIDです。
func (h *FireDetectionHandler) sessionID(c *gin.Context) (string, bool) {
	id, err := entity.NormalizeSessionID(c.GetHeader(SessionHeader))
	if err != nil {
		slog.Warn("セッションIDが不正", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid session id"})
		return "", false
	}
	return id, true
}

func toDetectionResponse(a *entity.Analysis) dto.DetectionResponse {
	d := a.Detection
	out := dto.DetectionResponse{
		IsFire:         d.IsFire,
		Confidence:     d.Confidence,
		Source:         d.Source,
		Labels:         d.Labels,
		FireRatio:      d.FireRatio,
		MeanBrightness: d.MeanBrightness,
		FrameIndex:     a.FrameIndex,
		FramesScanned:  a.FramesScanned,
	}
	for _, r := range d.Regions {
		out.Regions = append(out.Regions, dto.RegionResponse{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2})
	}
	if a.Event != nil {
		out.Event = &dto.EventResponse{
			ID:         a.Event.ID,
			FireID:     a.Event.FireID,
			ImageURL:   "/v1/fire/alerts/" + a.Event.ID + "/image",
			Advisory:   a.Event.Advisory,
			DetectedAt: a.Event.DetectedAt,
		}
	}
	if a.State != nil {
		out.State = toStateResponse(a.State)
	}
	return out
}

func toStateResponse(st *entity.SessionState) dto.StateResponse {
	return dto.StateResponse{
		SessionID:  st.SessionID,
		FireCount:  st.FireCount,
		LastFireID: st.LastFireID,
		Mode:       string(st.Mode),
		ModeLabel:  st.Mode.Label(),
	}
}
