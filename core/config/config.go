package config

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	RecordingsDirName = "recordings"
)

// ErrNoConfigDir is returned by operations that need a configuration
// directory when the built-in defaults are in use.
var ErrNoConfigDir = errors.New("no configuration directory")

type Configuration struct {
	configFs         afero.Fs
	configurationDir string

	Prompt        string `json:"prompt" validate:"required"`
	Color         bool   `json:"color"`
	InterruptHint string `json:"interrupt_hint" validate:"required"`
	MaxArgs       int    `json:"max_args" validate:"gte=1,lte=1024"`
	HistoryFile   string `json:"history_file"`
	HistoryLimit  int    `json:"history_limit" validate:"gte=-1"`
	RedirectPerm  string `json:"redirect_perm" validate:"required,octal_perm"`
	AppLog        string `json:"app_log"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	if err := validate.RegisterValidation("octal_perm", validateOctalPerm); err != nil {
		return err
	}

	return validate.Struct(c)
}

func validateOctalPerm(fl validator.FieldLevel) bool {
	_, err := parsePerm(fl.Field().String())
	return err == nil
}

func parsePerm(perm string) (fs.FileMode, error) {
	mode, err := strconv.ParseUint(perm, 8, 32)
	if err != nil {
		return 0, err
	}
	if mode > 0777 {
		return 0, strconv.ErrRange
	}
	return fs.FileMode(mode), nil
}

// RedirectFileMode gets the permission for files created by redirection.
func (c *Configuration) RedirectFileMode() fs.FileMode {
	mode, err := parsePerm(c.RedirectPerm)
	if err != nil {
		return 0644
	}
	return mode
}

// Dir returns the configuration directory or an empty string when the
// built-in defaults are used.
func (c *Configuration) Dir() string {
	return c.configurationDir
}

func (c *Configuration) fs() (afero.Fs, error) {
	if c.configFs == nil {
		return nil, ErrNoConfigDir
	}
	return c.configFs, nil
}

// HistoryPath returns the path of the line history file, or an empty string
// if history shouldn't be persisted.
func (c *Configuration) HistoryPath() string {
	switch {
	case c.HistoryFile == "" || c.HistoryLimit < 0:
		return ""
	case filepath.IsAbs(c.HistoryFile):
		return c.HistoryFile
	case c.configurationDir == "":
		return ""
	default:
		return filepath.Join(c.configurationDir, c.HistoryFile)
	}
}

// AppLogEnabled reports whether OpenAppLog can succeed.
func (c *Configuration) AppLogEnabled() bool {
	return c.AppLog != "" && c.configFs != nil
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	fsys, err := c.fs()
	if err != nil {
		return nil, err
	}
	if c.AppLog == "" {
		return nil, fs.ErrNotExist
	}
	return fsys.OpenFile(c.AppLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	fsys, err := c.fs()
	if err != nil {
		return nil, err
	}
	return fsys.OpenFile(c.AppLog, os.O_RDONLY, 0600)
}

// CreateRecording creates a session recording with the given name.
func (c *Configuration) CreateRecording(name string) (afero.File, error) {
	fsys, err := c.fs()
	if err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll(RecordingsDirName, 0700); err != nil {
		return nil, err
	}
	return fsys.Create(filepath.Join(RecordingsDirName, name))
}

// Default returns the built-in configuration, it has no directory so the
// history file and the application log are disabled.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
