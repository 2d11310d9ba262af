package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"logo_scanner/internal/feature/logodetection/domain/entity"
)

// mockLogoDetector はテスト用のLogoDetectorモック実装です。
type mockLogoDetector struct {
	detectFn func(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error)
	calls    int
}

// DetectLogos はモックのdetect関数を呼び出します。
func (m *mockLogoDetector) DetectLogos(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
	m.calls++
	if m.detectFn != nil {
		return m.detectFn(ctx, imageData)
	}
	return nil, nil
}

var (
	testImage = []byte("fake-image-data")
	testLogos = []entity.DetectedLogo{
		{
			Description: "Google",
			Score:       0.92,
			BoundingPoly: entity.BoundingPoly{
				Vertices: []entity.Vertex{{X: 10, Y: 10}, {X: 50, Y: 10}, {X: 50, Y: 40}, {X: 10, Y: 40}},
			},
		},
	}
)

// testKey はtestImageに対応するキャッシュキーを返します。
func testKey() string {
	sum := sha256.Sum256(testImage)
	return "logos:" + hex.EncodeToString(sum[:])
}

// TestNewCachingLogoDetector_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingLogoDetector_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			expectedTTL:       DefaultTTL,
			expectedNamespace: DefaultNamespace,
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			expectedTTL:       DefaultTTL,
			expectedNamespace: DefaultNamespace,
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := NewCachingLogoDetector(nil, tt.ttl, &mockLogoDetector{}, tt.namespace)

			if d.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, d.ttl)
			}
			if d.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, d.namespace)
			}
		})
	}
}

// TestCachingLogoDetector_NilRedis はRedisがnilの場合にキャッシュをバイパスすることを検証します。
func TestCachingLogoDetector_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockLogoDetector{
		detectFn: func(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
			return testLogos, nil
		},
	}

	d := NewCachingLogoDetector(nil, time.Hour, inner, "")

	logos, err := d.DetectLogos(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logos) != 1 || inner.calls != 1 {
		t.Errorf("expected inner detector to be called once, got %d calls and %d logos", inner.calls, len(logos))
	}
}

// TestCachingLogoDetector_CacheHit はキャッシュヒット時にVision APIを呼ばないことを検証します。
func TestCachingLogoDetector_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedJSON, _ := json.Marshal(testLogos)
	mock.ExpectGet(testKey()).SetVal(string(cachedJSON))

	inner := &mockLogoDetector{}
	d := NewCachingLogoDetector(rdb, time.Hour, inner, "")

	logos, err := d.DetectLogos(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner detector should not be called on cache hit")
	}
	if len(logos) != 1 || len(logos[0].BoundingPoly.Vertices) != 4 {
		t.Errorf("expected cached logo with polygon, got %+v", logos)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingLogoDetector_CacheMiss はキャッシュミス時にAPIの結果をキャッシュに保存することを検証します。
func TestCachingLogoDetector_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(testLogos)
	mock.ExpectGet(testKey()).RedisNil()
	mock.ExpectSet(testKey(), expectedJSON, time.Hour).SetVal("OK")

	inner := &mockLogoDetector{
		detectFn: func(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
			return testLogos, nil
		},
	}
	d := NewCachingLogoDetector(rdb, time.Hour, inner, "")

	logos, err := d.DetectLogos(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(logos) != 1 {
		t.Errorf("expected 1 inner call and 1 logo, got %d calls and %d logos", inner.calls, len(logos))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingLogoDetector_CorruptedEntry は破損したキャッシュを削除してAPIにフォールバックすることを検証します。
func TestCachingLogoDetector_CorruptedEntry(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(testLogos)
	mock.ExpectGet(testKey()).SetVal("{not-json")
	mock.ExpectDel(testKey()).SetVal(1)
	mock.ExpectSet(testKey(), expectedJSON, time.Hour).SetVal("OK")

	inner := &mockLogoDetector{
		detectFn: func(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
			return testLogos, nil
		},
	}
	d := NewCachingLogoDetector(rdb, time.Hour, inner, "")

	if _, err := d.DetectLogos(context.Background(), testImage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner detector to be called once, got %d", inner.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingLogoDetector_InnerError は内部検出器のエラーが伝播され、キャッシュされないことを検証します。
func TestCachingLogoDetector_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("vision API error")
	mock.ExpectGet(testKey()).RedisNil()

	inner := &mockLogoDetector{
		detectFn: func(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
			return nil, expectedErr
		},
	}
	d := NewCachingLogoDetector(rdb, time.Hour, inner, "")

	_, err := d.DetectLogos(context.Background(), testImage)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingLogoDetector_RedisError はRedisエラー時にもAPIにフォールバックすることを検証します。
func TestCachingLogoDetector_RedisError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(testLogos)
	mock.ExpectGet(testKey()).SetErr(errors.New("connection reset"))
	mock.ExpectSet(testKey(), expectedJSON, time.Hour).SetErr(errors.New("connection reset"))

	inner := &mockLogoDetector{
		detectFn: func(ctx context.Context, imageData []byte) ([]entity.DetectedLogo, error) {
			return testLogos, nil
		},
	}
	d := NewCachingLogoDetector(rdb, time.Hour, inner, "")

	logos, err := d.DetectLogos(context.Background(), testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logos) != 1 {
		t.Errorf("expected 1 logo, got %d", len(logos))
	}
}
