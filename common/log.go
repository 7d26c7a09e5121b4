package common

import (
	"os"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LOG_LEVEL int

const (
	LEVEL_DEBUG LOG_LEVEL = iota
	LEVEL_INFO
	LEVEL_WARN
	LEVEL_ERROR
)

var (
	LOG_LEVEL_Name = map[LOG_LEVEL]string{
		0: "DEBUG",
		1: "INFO",
		2: "WARN",
		3: "ERROR",
	}
	LOG_LEVEL_Value = map[string]LOG_LEVEL{
		"DEBUG": 0,
		"INFO":  1,
		"WARN":  2,
		"ERROR": 3,
	}
)

// ParseLogLevel maps a level name to LOG_LEVEL, case-insensitively.
// Unknown names resolve to LEVEL_INFO.
func ParseLogLevel(s string) LOG_LEVEL {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		s = "WARN"
	}
	if l, ok := LOG_LEVEL_Value[s]; ok {
		return l
	}
	return LEVEL_INFO
}

const (
	LOG_MODE_DEV  = "DEV"
	LOG_MODE_PROD = "PROD"
)

type LogConfig struct {
	BriefMode          string
	ModuleSpecialLevel map[string]LOG_LEVEL

	LogPath        string // empty disables the file sink
	LogLevel       LOG_LEVEL
	RotationMaxAge int // days
	RotationTime   int // hours
	RotationSize   int // MB
	ShowLine       bool
	LogInConsole   bool
}

func DefaultLogConfig(isDEV bool) *LogConfig {
	if isDEV {
		return defaultBriefLogConfigForDEV()
	}

	return defaultBriefLogConfigForPROD()
}

func defaultBriefLogConfigForDEV() *LogConfig {
	return &LogConfig{
		LogPath:        "./percviz.dev.log",
		LogLevel:       LEVEL_DEBUG,
		RotationMaxAge: 1,
		RotationTime:   1,
		RotationSize:   10,
		ShowLine:       true,
		LogInConsole:   true,
	}
}

func defaultBriefLogConfigForPROD() *LogConfig {
	return &LogConfig{
		LogPath:        "./percviz.log",
		LogLevel:       LEVEL_INFO,
		RotationMaxAge: 7,
		RotationTime:   24,
		RotationSize:   30,
		ShowLine:       false,
		LogInConsole:   false,
	}
}

func adjustLogConfig(name string, lc *LogConfig) *LogConfig {
	if lc.BriefMode != "" {
		return DefaultLogConfig(lc.BriefMode != LOG_MODE_PROD)
	}

	newC := *lc
	newC.ModuleSpecialLevel = nil
	if l, ok := lc.ModuleSpecialLevel[name]; ok {
		newC.LogLevel = l
	}
	return &newC
}

func zapLevel(l LOG_LEVEL) zapcore.Level {
	switch l {
	case LEVEL_DEBUG:
		return zap.DebugLevel
	case LEVEL_INFO:
		return zap.InfoLevel
	case LEVEL_WARN:
		return zap.WarnLevel
	case LEVEL_ERROR:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func NewSugaredLogger(name string, lc *LogConfig) (*zap.SugaredLogger, error) {
	lcc := adjustLogConfig(name, lc)
	lvl := zapLevel(lcc.LogLevel)
	priorityLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= lvl
	})

	var syncers []zapcore.WriteSyncer
	if lcc.LogPath != "" {
		rotationWriter, err := rotatelogs.New(
			lcc.LogPath+".%Y%m%d%H",
			rotatelogs.WithRotationTime(time.Duration(lcc.RotationTime)*time.Hour),
			rotatelogs.WithRotationSize(int64(lcc.RotationSize)*1024*1024),
			rotatelogs.WithMaxAge(time.Hour*24*time.Duration(lcc.RotationMaxAge)),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "new rotation log %s", lcc.LogPath)
		}
		syncers = append(syncers, zapcore.AddSync(rotationWriter))
	}
	// progress lines go to stdout, so the console tee uses stderr
	if lcc.LogInConsole {
		syncers = append(syncers, zapcore.AddSync(os.Stderr))
	}
	if len(syncers) == 0 {
		return zap.NewNop().Sugar(), nil
	}

	customLevelEncoder := func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + level.CapitalString() + "]")
	}
	customTimeEncoder := func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "line",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.NewMultiWriteSyncer(syncers...), priorityLevel)
	logger := zap.New(core).Named(name)

	var opts []zap.Option
	if lcc.ShowLine {
		opts = append(opts, zap.AddCaller())
	}
	// PLogger wraps the sugared logger, skip its frame
	opts = append(opts, zap.AddCallerSkip(1))
	return logger.WithOptions(opts...).Sugar(), nil
}

const (
	MODULE_LEARNER = "[Learner]"
	MODULE_DRIVER  = "[Driver]"
	MODULE_DATASET = "[Dataset]"
	MODULE_RENDER  = "[Render]"
	MODULE_NODE    = "[Node]"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

type PLogger struct {
	zlog  *zap.SugaredLogger
	name  string
	runID string
	mutex sync.RWMutex
}

func (l *PLogger) Logger() *zap.SugaredLogger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog
}

func (l *PLogger) Debug(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debug(args...)
}

func (l *PLogger) Debugf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Debugf(format, args...)
}

func (l *PLogger) Info(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Info(args...)
}

func (l *PLogger) Infof(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Infof(format, args...)
}

func (l *PLogger) Warn(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warn(args...)
}

func (l *PLogger) Warnf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Warnf(format, args...)
}

func (l *PLogger) Error(args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Error(args...)
}

func (l *PLogger) Errorf(format string, args ...interface{}) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	l.zlog.Errorf(format, args...)
}

func (l *PLogger) Sync() error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.zlog.Sync()
}

func (l *PLogger) SetLogger(logger *zap.SugaredLogger) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.zlog = logger
}

var (
	pLoggersMap = make(map[string]*PLogger)
	loggerMutex sync.RWMutex
	pLogConfig  *LogConfig
)

func GetLogger(name string) *PLogger {
	return GetLoggerWithRunID(name, "")
}

// GetLoggerWithRunID returns the logger for a module, scoped to one training
// run when runID is set. Loggers are created once and reconfigured in place
// by SetLogConfig.
func GetLoggerWithRunID(name, runID string) *PLogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	loggerKey := name + runID
	if logger, ok := pLoggersMap[loggerKey]; ok {
		return logger
	}

	if pLogConfig == nil {
		pLogConfig = DefaultLogConfig(true)
	}

	logger := &PLogger{
		name:  name,
		runID: runID,
		zlog:  newScopedLogger(name, runID, pLogConfig),
	}
	pLoggersMap[loggerKey] = logger

	return logger
}

// SetLogConfig installs config and rebuilds every logger handed out so far.
func SetLogConfig(config *LogConfig) error {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	// validate once so a bad path is reported instead of silently ignored
	if _, err := NewSugaredLogger("", config); err != nil {
		return err
	}
	pLogConfig = config
	for _, logger := range pLoggersMap {
		logger.SetLogger(newScopedLogger(logger.name, logger.runID, pLogConfig))
	}
	return nil
}

func newScopedLogger(name, runID string, lc *LogConfig) *zap.SugaredLogger {
	zlog, err := NewSugaredLogger(name, lc)
	if err != nil {
		// config was validated by SetLogConfig; only the built-in default can land here
		zlog = zap.NewNop().Sugar()
	}
	if runID != "" {
		zlog = zlog.With("run", runID)
	}
	return zlog
}
