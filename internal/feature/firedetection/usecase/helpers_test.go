package usecase_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"fire_backend/internal/feature/firedetection/domain"
	"fire_backend/internal/feature/firedetection/domain/entity"
)

// ErrBackend はモックと期待値の間で共有されるセンチネルエラーです。
var ErrBackend = errors.New("backend error")

var (
	flame = color.NRGBA{R: 230, G: 140, B: 40, A: 0xff}
	night = color.NRGBA{R: 10, G: 10, B: 30, A: 0xff}
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// encodePNG は単色PNGのバイト列を生成するヘルパー関数です。
func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h, c)))
	return buf.Bytes()
}

// pngHeader は画素データを持たず、IHDRで大きな寸法だけを宣言するPNGを生成します。
// 数十バイトで任意の幅と高さを主張できます。
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // ビット深度
	ihdr[9] = 2 // RGB

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	_ = binary.Write(&buf, binary.BigEndian, uint32(0))
	buf.WriteString("IEND")
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE([]byte("IEND")))
	return buf.Bytes()
}

// encodeGIF はフレームごとの色を並べたアニメーションGIFを生成します。
func encodeGIF(t *testing.T, w, h int, colors ...color.NRGBA) []byte {
	t.Helper()
	palette := color.Palette{night, flame}
	g := &gif.GIF{}
	for _, c := range colors {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), palette)
		idx := uint8(palette.Index(c))
		for i := range frame.Pix {
			frame.Pix[i] = idx
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, g))
	return buf.Bytes()
}

// mockDetector はFireDetectorインターフェースのモック実装です。
type mockDetector struct {
	mu             sync.Mutex
	DetectFireFunc func(ctx context.Context, img image.Image, mode entity.Mode) (entity.Detection, error)
	Calls          int
	Modes          []entity.Mode
}

func (m *mockDetector) DetectFire(ctx context.Context, img image.Image, mode entity.Mode) (entity.Detection, error) {
	m.mu.Lock()
	m.Calls++
	m.Modes = append(m.Modes, mode)
	m.mu.Unlock()
	if m.DetectFireFunc != nil {
		return m.DetectFireFunc(ctx, img, mode)
	}
	return entity.Detection{}, errors.New("DetectFireFunc is not implemented")
}

func (m *mockDetector) Name() string { return "mock" }

// mockState はStateRepositoryインターフェースのメモリ上のモック実装です。
type mockState struct {
	states  map[string]*entity.SessionState
	GetErr  error
	FireErr error
	ModeErr error
}

func newMockState() *mockState {
	return &mockState{states: map[string]*entity.SessionState{}}
}

func (m *mockState) load(id string) *entity.SessionState {
	st, ok := m.states[id]
	if !ok {
		st = &entity.SessionState{SessionID: id, Mode: entity.DefaultMode}
		m.states[id] = st
	}
	return st
}

func (m *mockState) Get(_ context.Context, id string) (*entity.SessionState, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	cp := *m.load(id)
	return &cp, nil
}

func (m *mockState) RecordFire(_ context.Context, id, fireID string) (*entity.SessionState, error) {
	if m.FireErr != nil {
		return nil, m.FireErr
	}
	st := m.load(id)
	if st.LastFireID != fireID {
		st.FireCount++
		st.LastFireID = fireID
	}
	cp := *st
	return &cp, nil
}

func (m *mockState) SetMode(_ context.Context, id string, mode entity.Mode) (*entity.SessionState, error) {
	if m.ModeErr != nil {
		return nil, m.ModeErr
	}
	st := m.load(id)
	st.Mode = mode
	cp := *st
	return &cp, nil
}

// mockEvents はEventRepositoryインターフェースのモック実装です。
type mockEvents struct {
	events    map[string]*entity.FireEvent
	CreateErr error
}

func newMockEvents() *mockEvents {
	return &mockEvents{events: map[string]*entity.FireEvent{}}
}

func (m *mockEvents) Create(_ context.Context, e *entity.FireEvent) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, ok := m.events[e.ID]; ok {
		return domain.ErrEventExists
	}
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *mockEvents) FindByID(_ context.Context, id string) (*entity.FireEvent, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

// mockAlerts はAlertStoreインターフェースのモック実装です。
type mockAlerts struct {
	Names  []string
	Images []image.Image
	Err    error
}

func (m *mockAlerts) Save(_ context.Context, name string, img image.Image) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Names = append(m.Names, name)
	m.Images = append(m.Images, img)
	return "/alerts/" + name + ".jpg", nil
}

// mockCache はResultCacheインターフェースのモック実装です。
type mockCache struct {
	data map[string]entity.Verdict
	Sets int
}

func (m *mockCache) Get(_ context.Context, key string) (*entity.Verdict, bool) {
	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	return &v, true
}

func (m *mockCache) Set(_ context.Context, key string, v *entity.Verdict) {
	if m.data == nil {
		m.data = map[string]entity.Verdict{}
	}
	m.data[key] = *v
	m.Sets++
}

// mockAdvisor はAdvisorインターフェースのモック実装です。
type mockAdvisor struct {
	Advice string
	Err    error
	Calls  int
}

func (m *mockAdvisor) Advise(_ context.Context, _ *entity.FireEvent) (string, error) {
	m.Calls++
	return m.Advice, m.Err
}

// mockNotifier はNotifierインターフェースのモック実装です。
type mockNotifier struct {
	Events []*entity.FireEvent
	Err    error
}

func (m *mockNotifier) Notify(_ context.Context, e *entity.FireEvent) error {
	m.Events = append(m.Events, e)
	return m.Err
}
