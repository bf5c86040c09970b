package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"infrawatch/backend/config"
)

// HTTPDetector 通过 HTTP 推理服务识别损伤
//
// 推理服务接收 multipart 字段 image，返回 {"detections":[{"label":..,"confidence":..}]}。
// 调用时检查模型文件与服务健康状态；检查通过后不再重复，未通过时下次调用重试。
type HTTPDetector struct {
	endpoint  string
	modelPath string
	client    *http.Client
	logger    *zap.Logger

	mu    sync.Mutex
	ready bool
}

// NewHTTPDetector 创建 HTTPDetector，此时不会访问网络
func NewHTTPDetector(cfg *config.DetectorConfig, logger *zap.Logger) *HTTPDetector {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPDetector{
		endpoint:  cfg.Endpoint,
		modelPath: cfg.ModelPath,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type inferenceResponse struct {
	Detections []Detection `json:"detections"`
}

// Detect 识别图片中的损伤
func (d *HTTPDetector) Detect(ctx context.Context, path string) Result {
	if !d.ensureLoaded() {
		return ModelError()
	}

	detections, err := d.infer(ctx, path)
	if err != nil {
		d.logger.Warn("损伤识别失败", zap.String("path", filepath.Base(path)), zap.Error(err))
		return ModelError()
	}
	return Best(detections)
}

// ensureLoaded 只记住成功的加载；健康检查使用自身的超时，不受调用方请求取消影响
func (d *HTTPDetector) ensureLoaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ready {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
	defer cancel()
	d.ready = d.load(ctx)
	return d.ready
}

// load 检查模型是否可用
func (d *HTTPDetector) load(ctx context.Context) bool {
	if d.endpoint == "" {
		d.logger.Warn("未配置识别服务地址，损伤识别不可用")
		return false
	}
	if d.modelPath != "" {
		if _, err := os.Stat(d.modelPath); err != nil {
			d.logger.Warn("模型文件不存在", zap.String("model_path", d.modelPath), zap.Error(err))
			return false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.endpoint+"/health", nil)
	if err != nil {
		d.logger.Warn("识别服务地址无效", zap.String("endpoint", d.endpoint), zap.Error(err))
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("识别服务不可达", zap.String("endpoint", d.endpoint), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("识别服务健康检查失败", zap.Int("status", resp.StatusCode))
		return false
	}

	d.logger.Info("识别模型已加载", zap.String("endpoint", d.endpoint))
	return true
}

func (d *HTTPDetector) infer(ctx context.Context, path string) ([]Detection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开图片失败: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("读取图片失败: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"/predict", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("识别服务返回状态码 %d", resp.StatusCode)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析识别结果失败: %w", err)
	}
	return out.Detections, nil
}
