package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"percviz/common"
	"percviz/core/dataset"
	"percviz/core/ml"
)

const (
	EnvPrefix      = "percviz"
	EnvCfgPath     = "PERCVIZ_CFG_PATH"
	ConfigFileName = "percviz_config"
)

type DatasetConfig struct {
	Path       string  `mapstructure:"path"`
	Generate   bool    `mapstructure:"generate"`
	Points     int     `mapstructure:"points"`
	Seed       int64   `mapstructure:"seed"`
	Policy     string  `mapstructure:"policy"`
	Separation float64 `mapstructure:"separation"`
}

type TrainConfig struct {
	MaxEpochs    int           `mapstructure:"max_epochs"`
	FrameDelay   time.Duration `mapstructure:"frame_delay"`
	Hold         bool          `mapstructure:"hold"`
	LearningRate float64       `mapstructure:"learning_rate"`
	Weights      []float64     `mapstructure:"weights"`
}

type ViewConfig struct {
	Width      int     `mapstructure:"width"`
	Height     int     `mapstructure:"height"`
	WorldRange float64 `mapstructure:"world_range"`
	Scale      float64 `mapstructure:"scale"`
	Fit        bool    `mapstructure:"fit"`
	Margin     int     `mapstructure:"margin"`
}

type RenderConfig struct {
	Mode    string `mapstructure:"mode"`
	Dir     string `mapstructure:"dir"`
	Workers int    `mapstructure:"workers"`
	Clear   bool   `mapstructure:"clear"`
	Cols    int    `mapstructure:"cols"`
	Rows    int    `mapstructure:"rows"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level          string            `mapstructure:"level"`
	Path           string            `mapstructure:"path"`
	Console        bool              `mapstructure:"console"`
	ShowLine       bool              `mapstructure:"show_line"`
	RotationMaxAge int               `mapstructure:"rotation_max_age"`
	RotationTime   int               `mapstructure:"rotation_time"`
	RotationSize   int               `mapstructure:"rotation_size"`
	Modules        map[string]string `mapstructure:"modules"`
}

type LocalConfig struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Train   TrainConfig   `mapstructure:"train"`
	View    ViewConfig    `mapstructure:"view"`
	Render  RenderConfig  `mapstructure:"render"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`

	// file the config was read from, empty when defaults only
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.path", "dataset.csv")
	v.SetDefault("dataset.generate", false)
	v.SetDefault("dataset.points", 900)
	v.SetDefault("dataset.seed", 1)
	v.SetDefault("dataset.policy", string(dataset.PolicyBanded))
	v.SetDefault("dataset.separation", 3.0)

	v.SetDefault("train.max_epochs", 0)
	v.SetDefault("train.frame_delay", "100ms")
	v.SetDefault("train.hold", false)
	v.SetDefault("train.learning_rate", ml.DefaultLearningRate)
	v.SetDefault("train.weights", []float64{ml.DefaultWeights.W0, ml.DefaultWeights.W1, ml.DefaultWeights.W2})

	v.SetDefault("view.width", 800)
	v.SetDefault("view.height", 600)
	v.SetDefault("view.world_range", 10.0)
	v.SetDefault("view.scale", 0.0)
	v.SetDefault("view.fit", false)
	v.SetDefault("view.margin", 20)

	v.SetDefault("render.mode", "terminal")
	v.SetDefault("render.dir", "frames")
	v.SetDefault("render.workers", 4)
	v.SetDefault("render.clear", true)
	v.SetDefault("render.cols", 100)
	v.SetDefault("render.rows", 40)

	v.SetDefault("history.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.console", true)
	v.SetDefault("log.show_line", false)
	v.SetDefault("log.rotation_max_age", 7)
	v.SetDefault("log.rotation_time", 24)
	v.SetDefault("log.rotation_size", 30)
}

// flag name -> config key
var flagKeys = map[string]string{
	"dataset":    "dataset.path",
	"generate":   "dataset.generate",
	"points":     "dataset.points",
	"seed":       "dataset.seed",
	"policy":     "dataset.policy",
	"separation": "dataset.separation",
	"max-epochs": "train.max_epochs",
	"delay":      "train.frame_delay",
	"hold":       "train.hold",
	"render":     "render.mode",
	"frames":     "render.dir",
	"width":      "view.width",
	"height":     "view.height",
	"fit":        "view.fit",
	"history":    "history.path",
	"log-level":  "log.level",
	"log-path":   "log.path",
}

// InitLocalConfig resolves configuration from, lowest first: defaults, the
// config file, a .env file next to it, PERCVIZ_* variables, and the flags
// set on cmd.
//
// The file is the --config flag when set, otherwise percviz_config.* in
// $PERCVIZ_CFG_PATH (default "."). Only an explicitly named file must exist.
func InitLocalConfig(cmd *cobra.Command) (*LocalConfig, error) {
	v := viper.New()
	setDefaults(v)

	altPath := os.Getenv(EnvCfgPath)
	if altPath == "" {
		altPath = "."
	}
	if err := loadDotEnv(filepath.Join(altPath, ".env")); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cmdSetConfigFile := ""
	if flag := cmd.Flags().Lookup("config"); flag != nil {
		cmdSetConfigFile = flag.Value.String()
	}
	v.AddConfigPath(altPath)
	v.SetConfigName(ConfigFileName)
	if cmdSetConfigFile != "" {
		v.SetConfigFile(cmdSetConfigFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cmdSetConfigFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "config: read")
		}
	}

	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, errors.Wrapf(err, "config: bind flag %s", name)
			}
		}
	}

	lc := &LocalConfig{}
	if err := v.Unmarshal(lc); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	lc.File = v.ConfigFileUsed()
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	return lc, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "config: load %s", path)
}

func (lc *LocalConfig) Validate() error {
	if lc.Train.MaxEpochs < 0 {
		return errors.Errorf("config: train.max_epochs must be >= 0, got %d", lc.Train.MaxEpochs)
	}
	if lc.Train.FrameDelay < 0 {
		return errors.Errorf("config: train.frame_delay must be >= 0, got %s", lc.Train.FrameDelay)
	}
	if len(lc.Train.Weights) != 3 {
		return errors.Errorf("config: train.weights needs 3 values (w0, w1, w2), got %d", len(lc.Train.Weights))
	}
	if lc.View.Width <= 0 || lc.View.Height <= 0 {
		return errors.Errorf("config: view size %dx%d", lc.View.Width, lc.View.Height)
	}
	if !lc.Dataset.Generate && lc.Dataset.Path == "" {
		return errors.New("config: dataset.path is required unless dataset.generate is set")
	}
	return nil
}

func (lc *LocalConfig) InitialWeights() ml.Weights {
	return ml.Weights{W0: lc.Train.Weights[0], W1: lc.Train.Weights[1], W2: lc.Train.Weights[2]}
}

func (lc *LocalConfig) Generator() dataset.Generator {
	g := dataset.DefaultGenerator(lc.Dataset.Seed)
	g.Policy = dataset.Policy(lc.Dataset.Policy)
	g.Points = lc.Dataset.Points
	g.Separation = lc.Dataset.Separation
	return g
}

// DatasetProvider returns the generator when dataset.generate is set and
// the CSV file otherwise.
func (lc *LocalConfig) DatasetProvider() ml.Provider {
	if lc.Dataset.Generate {
		return lc.Generator()
	}
	return dataset.File{Path: lc.Dataset.Path}
}

func (lc *LocalConfig) LogConfig() (*common.LogConfig, error) {
	if lc.Log.RotationTime <= 0 || lc.Log.RotationMaxAge <= 0 || lc.Log.RotationSize <= 0 {
		return nil, errors.Errorf("config: log rotation settings must be positive, got %+v", lc.Log)
	}
	out := &common.LogConfig{
		LogPath:        lc.Log.Path,
		LogLevel:       common.ParseLogLevel(lc.Log.Level),
		RotationMaxAge: lc.Log.RotationMaxAge,
		RotationTime:   lc.Log.RotationTime,
		RotationSize:   lc.Log.RotationSize,
		ShowLine:       lc.Log.ShowLine,
		LogInConsole:   lc.Log.Console,
	}
	if len(lc.Log.Modules) > 0 {
		out.ModuleSpecialLevel = make(map[string]common.LOG_LEVEL, len(lc.Log.Modules))
		title := cases.Title(language.Und)
		// "driver: debug" configures the "[Driver]" logger
		for name, level := range lc.Log.Modules {
			out.ModuleSpecialLevel["["+title.String(strings.Trim(name, "[]"))+"]"] = common.ParseLogLevel(level)
		}
	}
	return out, nil
}
