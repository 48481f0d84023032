// Package usecase はfiredetectionフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"fire_backend/internal/feature/firedetection/classifier"
	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// DefaultFrameSampleInterval はアニメーション画像で何フレームごとに判定するかの既定値です。
	DefaultFrameSampleInterval = 1
)

// FireDetector は1フレームから火災を検出するインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type FireDetector interface {
	// DetectFire はモードに応じた感度でフレームを判定します。
	DetectFire(ctx context.Context, img image.Image, mode entity.Mode) (entity.Detection, error)
	// Name はキャッシュキーと永続化に使う検出器名です。
	Name() string
}

// Fingerprinter は設定によって判定が変わる検出器が実装します。
// Fingerprintが変わると以前のキャッシュ済み判定は使われません。
type Fingerprinter interface {
	Fingerprint() string
}

// StateRepository はセッションごとのアプリケーション状態を管理します。
type StateRepository interface {
	Get(ctx context.Context, sessionID string) (*entity.SessionState, error)
	// RecordFire はfireIDが直前のIDと異なる場合だけ火災数を加算し、更新後の状態を返します。
	RecordFire(ctx context.Context, sessionID, fireID string) (*entity.SessionState, error)
	SetMode(ctx context.Context, sessionID string, mode entity.Mode) (*entity.SessionState, error)
}

// EventRepository は火災イベントを永続化します。
type EventRepository interface {
	Create(ctx context.Context, event *entity.FireEvent) error
	FindByID(ctx context.Context, id string) (*entity.FireEvent, error)
}

// AlertStore は注釈付きアラート画像を保存し、保存先パスを返します。
type AlertStore interface {
	Save(ctx context.Context, name string, img image.Image) (string, error)
}

// ResultCache は画像ごとの判定結果をキャッシュします。失敗はキャッシュミスとして扱われます。
type ResultCache interface {
	Get(ctx context.Context, key string) (*entity.Verdict, bool)
	Set(ctx context.Context, key string, v *entity.Verdict)
}

// Advisor は火災イベントに対する避難アドバイスを生成します。
type Advisor interface {
	Advise(ctx context.Context, event *entity.FireEvent) (string, error)
}

// Notifier は火災イベントを外部へ通知します。
type Notifier interface {
	Notify(ctx context.Context, event *entity.FireEvent) error
}

// DetectionConfig は検出ユースケースの調整値です。
type DetectionConfig struct {
	// MaxDimension を超える辺を持つフレームは判定前に縮小されます。0で無効です。
	MaxDimension int
	// FrameSampleInterval はN枚ごとにフレームを判定します。
	FrameSampleInterval int
}

// Option はdetectionUsecaseの任意の依存を設定します。
type Option func(*detectionUsecase)

// WithCache は判定結果のキャッシュを設定します。
func WithCache(c ResultCache) Option {
	return func(u *detectionUsecase) { u.cache = c }
}

// WithAdvisor は避難アドバイスの生成器を設定します。
func WithAdvisor(a Advisor) Option {
	return func(u *detectionUsecase) { u.advisor = a }
}

// WithNotifier は通知先を設定します。
func WithNotifier(n Notifier) Option {
	return func(u *detectionUsecase) { u.notifier = n }
}

// WithClock は現在時刻の取得関数を差し替えます（テスト用）。
func WithClock(now func() time.Time) Option {
	return func(u *detectionUsecase) { u.now = now }
}

// WithIDGenerator はイベントIDの生成関数を差し替えます（テスト用）。
func WithIDGenerator(gen func() string) Option {
	return func(u *detectionUsecase) { u.newID = gen }
}

// detectionUsecase は画像アップロードから火災判定・記録までを扱います。
type detectionUsecase struct {
	detector FireDetector
	state    StateRepository
	events   EventRepository
	alerts   AlertStore
	cfg      DetectionConfig

	cache    ResultCache
	advisor  Advisor
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

// NewDetectionUsecase はdetectionUsecaseの新しいインスタンスを生成します。
func NewDetectionUsecase(
	detector FireDetector,
	state StateRepository,
	events EventRepository,
	alerts AlertStore,
	cfg DetectionConfig,
	opts ...Option,
) *detectionUsecase {
	if cfg.FrameSampleInterval < 1 {
		cfg.FrameSampleInterval = DefaultFrameSampleInterval
	}
	u := &detectionUsecase{
		detector: detector,
		state:    state,
		events:   events,
		alerts:   alerts,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Detect はアップロード画像を判定し、陽性なら注釈画像の保存・状態更新・イベント記録を行います。
func (u *detectionUsecase) Detect(ctx context.Context, sessionID string, imageData []byte) (*entity.Analysis, error) {
	if len(imageData) == 0 {
		return nil, domain.ErrEmptyImage
	}
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrImageTooLarge, len(imageData), MaxImageSize)
	}
	sessionID, err := entity.NormalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	st, err := u.state.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}

	fs, err := decodeFrames(imageData, u.cfg.FrameSampleInterval)
	if err != nil {
		return nil, err
	}

	key := u.cacheKey(imageData, st.Mode)
	verdict, hit := u.lookup(ctx, key)
	if !hit {
		v, err := ScanFrames(ctx, fs.frames, 1, func(ctx context.Context, frame image.Image) (entity.Detection, error) {
			return u.detector.DetectFire(ctx, u.downscale(frame), st.Mode)
		})
		if err != nil {
			return nil, fmt.Errorf("fire detection failed: %w", err)
		}
		// サンプリング後の位置を元のフレーム番号に戻す
		v.FrameIndex = fs.indices[v.FrameIndex]
		verdict = &v
		if u.cache != nil {
			u.cache.Set(ctx, key, verdict)
		}
	}

	res := &entity.Analysis{Verdict: *verdict, State: st}
	if !verdict.Detection.IsFire {
		return res, nil
	}

	frame, ok := fs.frame(verdict.FrameIndex)
	if !ok {
		return nil, fmt.Errorf("%w: frame index %d out of range", domain.ErrInvalidImage, verdict.FrameIndex)
	}
	event, state, err := u.recordFire(ctx, sessionID, st.Mode, verdict, frame)
	if err != nil {
		return nil, err
	}
	res.Event = event
	res.State = state
	return res, nil
}

// recordFire は陽性判定の副作用（画像保存・状態更新・永続化・通知）を実行します。
func (u *detectionUsecase) recordFire(ctx context.Context, sessionID string, mode entity.Mode, v *entity.Verdict, frame image.Image) (*entity.FireEvent, *entity.SessionState, error) {
	now := u.now()
	event := &entity.FireEvent{
		ID:             u.newID(),
		FireID:         now.Format(entity.FireIDLayout),
		SessionID:      sessionID,
		Source:         v.Detection.Source,
		Mode:           mode,
		Confidence:     v.Detection.Confidence,
		FireRatio:      v.Detection.FireRatio,
		MeanBrightness: v.Detection.MeanBrightness,
		FrameIndex:     v.FrameIndex,
		DetectedAt:     now,
	}

	var (
		annotated *image.RGBA
		err       error
	)
	if len(v.Detection.Regions) > 0 {
		annotated, err = classifier.AnnotateAll(frame, v.Detection.Regions)
	} else {
		annotated, err = classifier.Annotate(frame, nil)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to annotate frame: %w", err)
	}

	path, err := u.alerts.Save(ctx, alertName(event), annotated)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save alert image: %w", err)
	}
	event.ImagePath = path

	state, err := u.state.RecordFire(ctx, sessionID, event.FireID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record fire: %w", err)
	}

	if u.advisor != nil {
		advice, err := u.advisor.Advise(ctx, event)
		if err != nil {
			slog.Warn("advisory generation failed", "event_id", event.ID, "error", err)
		} else {
			event.Advisory = advice
		}
	}

	if err := u.events.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("failed to persist fire event %s: %w", event.ID, err)
	}

	if u.notifier != nil {
		if err := u.notifier.Notify(ctx, event); err != nil {
			slog.Warn("fire notification failed", "event_id", event.ID, "error", err)
		}
	}

	slog.Info("fire detected",
		"event_id", event.ID,
		"session_id", sessionID,
		"source", event.Source,
		"confidence", event.Confidence,
		"fire_count", state.FireCount,
	)
	return event, state, nil
}

// AlertImage はイベントIDから注釈付き画像のパスを返します。
func (u *detectionUsecase) AlertImage(ctx context.Context, eventID string) (string, error) {
	if eventID == "" {
		return "", fmt.Errorf("%w: event id is required", domain.ErrInvalidArgument)
	}
	event, err := u.events.FindByID(ctx, eventID)
	if err != nil {
		return "", err
	}
	if event.ImagePath == "" {
		return "", fmt.Errorf("%w: %s has no image", domain.ErrEventNotFound, eventID)
	}
	return event.ImagePath, nil
}

func (u *detectionUsecase) lookup(ctx context.Context, key string) (*entity.Verdict, bool) {
	if u.cache == nil {
		return nil, false
	}
	return u.cache.Get(ctx, key)
}

// cacheKey は検出器・設定・モード・画像内容から判定結果のキーを作ります。
func (u *detectionUsecase) cacheKey(data []byte, mode entity.Mode) string {
	sum := sha256.Sum256(data)
	fingerprint := "-"
	if f, ok := u.detector.(Fingerprinter); ok && f.Fingerprint() != "" {
		fingerprint = f.Fingerprint()
	}
	return fmt.Sprintf("%s:%s:%s:i%d:%s", u.detector.Name(), fingerprint, mode, u.cfg.FrameSampleInterval, hex.EncodeToString(sum[:]))
}

func (u *detectionUsecase) downscale(frame image.Image) image.Image {
	limit := u.cfg.MaxDimension
	b := frame.Bounds()
	if limit <= 0 || (b.Dx() <= limit && b.Dy() <= limit) {
		return frame
	}
	return imaging.Fit(frame, limit, limit, imaging.Box)
}

// alertName はアラート画像のファイル名（拡張子なし）です。
func alertName(e *entity.FireEvent) string {
	short := e.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("fire_%s_%s", e.FireID, short)
}
