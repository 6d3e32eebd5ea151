package common

// Environment variable keys
const (
	EnvConfigFile      = "CONFIG_FILE"
	EnvPort            = "IRIS_PORT"
	EnvScalerPath      = "IRIS_SCALER_PATH"
	EnvModelPath       = "IRIS_MODEL_PATH"
	EnvBundlePath      = "IRIS_BUNDLE_PATH"
	EnvImageDir        = "IRIS_IMAGE_DIR"
	EnvChartCacheSize  = "IRIS_CHART_CACHE_SIZE"
	EnvChartWidth      = "IRIS_CHART_WIDTH"
	EnvChartHeight     = "IRIS_CHART_HEIGHT"
	EnvReadTimeout     = "IRIS_READ_TIMEOUT"
	EnvWriteTimeout    = "IRIS_WRITE_TIMEOUT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFile         = "LOG_FILE"
	EnvDashboardURL    = "IRIS_DASHBOARD_URL"
	EnvShutdownTimeout = "IRIS_SHUTDOWN_TIMEOUT"
)

// Configuration defaults
const (
	DefaultPort           = 8501
	DefaultScalerPath     = "models/scaler.json"
	DefaultModelPath      = "models/model.json"
	DefaultChartCacheSize = 32
	DefaultChartWidth     = 640
	DefaultChartHeight    = 480
	DefaultLogLevel       = "info"
	DefaultDashboardURL   = "http://localhost:8501"
)

// Validation constants
const (
	MinPort           = 1024
	MaxPort           = 65535
	MaxChartCacheSize = 1024
	MinChartDimension = 200
	MaxChartDimension = 4096
)

// Bundle bucket and key names
const (
	BundleBucket    = "artifacts"
	BundleScalerKey = "scaler"
	BundleModelKey  = "model"
)
