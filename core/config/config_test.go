package config

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())

	assert.Equal(t, "", cfg.Dir())
	assert.False(t, cfg.AppLogEnabled())
	assert.Equal(t, "", cfg.HistoryPath())

	_, err := cfg.OpenAppLog()
	assert.ErrorIs(t, err, ErrNoConfigDir)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Configuration)
		field  string
	}{
		"empty-prompt":   {func(c *Configuration) { c.Prompt = "" }, "prompt"},
		"no-hint":        {func(c *Configuration) { c.InterruptHint = "" }, "interrupt_hint"},
		"zero-max-args":  {func(c *Configuration) { c.MaxArgs = 0 }, "max_args"},
		"huge-max-args":  {func(c *Configuration) { c.MaxArgs = 5000 }, "max_args"},
		"history-limit":  {func(c *Configuration) { c.HistoryLimit = -2 }, "history_limit"},
		"decimal-perm":   {func(c *Configuration) { c.RedirectPerm = "0699" }, "redirect_perm"},
		"too-large-perm": {func(c *Configuration) { c.RedirectPerm = "7777" }, "redirect_perm"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.field)
			}
		})
	}
}

func TestRedirectFileMode(t *testing.T) {
	cfg := Default()
	assert.EqualValues(t, 0644, cfg.RedirectFileMode())

	cfg.RedirectPerm = "0600"
	assert.EqualValues(t, 0600, cfg.RedirectFileMode())

	cfg.RedirectPerm = "bogus"
	assert.EqualValues(t, 0644, cfg.RedirectFileMode())
}

func TestHistoryPath(t *testing.T) {
	cfg := Default()
	cfg.configurationDir = "/etc/minishell"

	assert.Equal(t, filepath.Join("/etc/minishell", "history"), cfg.HistoryPath())

	cfg.HistoryFile = "/tmp/hist"
	assert.Equal(t, "/tmp/hist", cfg.HistoryPath())

	cfg.HistoryLimit = -1
	assert.Equal(t, "", cfg.HistoryPath())
}
