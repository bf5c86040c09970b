package detection

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"infrawatch/backend/config"
)

func TestBest(t *testing.T) {
	tests := []struct {
		name       string
		detections []Detection
		want       Result
	}{
		{"无检测框", nil, Result{LabelNoDamage, 0}},
		{"单个", []Detection{{"pothole", 0.7}}, Result{"pothole", 0.7}},
		{"取最高", []Detection{{"crack", 0.4}, {"pothole", 0.9}, {"rut", 0.6}}, Result{"pothole", 0.9}},
		{"并列取先出现", []Detection{{"crack", 0.6}, {"pothole", 0.6}}, Result{"crack", 0.6}},
		{"超出上限截断", []Detection{{"crack", 1.7}}, Result{"crack", 1}},
		{"负数与 NaN 视为 0", []Detection{{"crack", -0.3}, {"rut", math.NaN()}}, Result{LabelNoDamage, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Best(tt.detections); got != tt.want {
				t.Errorf("期望 %+v，实际 %+v", tt.want, got)
			}
		})
	}
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "road.jpg")
	if err := os.WriteFile(path, []byte("fake-jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newInferenceServer(t *testing.T, detections []Detection, status int, healthCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(healthCalls, 1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("image"); err != nil {
			http.Error(w, "missing image", http.StatusBadRequest)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"detections": detections})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPDetector_Detect(t *testing.T) {
	var health int32
	srv := newInferenceServer(t, []Detection{{"crack", 0.55}, {"pothole", 0.83}}, http.StatusOK, &health)
	d := NewHTTPDetector(&config.DetectorConfig{Endpoint: srv.URL}, zap.NewNop())

	img := writeImage(t)
	for i := 0; i < 3; i++ {
		got := d.Detect(context.Background(), img)
		if got.Label != "pothole" || got.Confidence != 0.83 {
			t.Fatalf("期望 pothole/0.83，实际 %+v", got)
		}
	}
	if n := atomic.LoadInt32(&health); n != 1 {
		t.Errorf("模型应只加载一次，实际健康检查 %d 次", n)
	}
}

func TestHTTPDetector_NoDetections(t *testing.T) {
	var health int32
	srv := newInferenceServer(t, []Detection{}, http.StatusOK, &health)
	d := NewHTTPDetector(&config.DetectorConfig{Endpoint: srv.URL}, zap.NewNop())

	got := d.Detect(context.Background(), writeImage(t))
	if got != (Result{LabelNoDamage, 0}) {
		t.Errorf("期望 No Damage，实际 %+v", got)
	}
}

func TestHTTPDetector_ModelError(t *testing.T) {
	var health int32
	failing := newInferenceServer(t, nil, http.StatusInternalServerError, &health)

	tests := []struct {
		name string
		cfg  config.DetectorConfig
	}{
		{"未配置地址", config.DetectorConfig{}},
		{"模型文件缺失", config.DetectorConfig{Endpoint: failing.URL, ModelPath: filepath.Join(t.TempDir(), "best.pt")}},
		{"服务不可达", config.DetectorConfig{Endpoint: "http://127.0.0.1:1"}},
		{"推理失败", config.DetectorConfig{Endpoint: failing.URL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewHTTPDetector(&tt.cfg, zap.NewNop())
			if got := d.Detect(context.Background(), writeImage(t)); got != ModelError() {
				t.Errorf("期望 Model Error，实际 %+v", got)
			}
		})
	}
}

func TestHTTPDetector_RetriesAfterFailedLoad(t *testing.T) {
	var healthy int32
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&healthy) == 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"detections": []Detection{{"pothole", 0.9}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	d := NewHTTPDetector(&config.DetectorConfig{Endpoint: srv.URL}, zap.NewNop())
	img := writeImage(t)

	if got := d.Detect(context.Background(), img); got != ModelError() {
		t.Fatalf("服务未就绪时期望 Model Error，实际 %+v", got)
	}

	atomic.StoreInt32(&healthy, 1)
	if got := d.Detect(context.Background(), img); got != (Result{"pothole", 0.9}) {
		t.Errorf("服务恢复后应重新加载，实际 %+v", got)
	}
}

func TestHTTPDetector_CancelledFirstRequestDoesNotPoisonLoad(t *testing.T) {
	var health int32
	srv := newInferenceServer(t, []Detection{{"crack", 0.6}}, http.StatusOK, &health)
	d := NewHTTPDetector(&config.DetectorConfig{Endpoint: srv.URL}, zap.NewNop())
	img := writeImage(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := d.Detect(cancelled, img); got != ModelError() {
		t.Fatalf("请求已取消时期望 Model Error，实际 %+v", got)
	}

	if got := d.Detect(context.Background(), img); got != (Result{"crack", 0.6}) {
		t.Errorf("后续请求应正常识别，实际 %+v", got)
	}
	if n := atomic.LoadInt32(&health); n != 1 {
		t.Errorf("加载成功后不应重复健康检查，实际 %d 次", n)
	}
}
