package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"bfhlform/internal/model"
)

const DefaultEndpoint = "http://localhost:5000/bfhl"

type Config struct {
	Endpoint     string `validate:"required,url,startswith=http"`
	FilterStyle  string `validate:"oneof=checkbox dropdown"`
	Render       string `validate:"oneof=lines json"`
	ContractFile string `validate:"omitempty,file"`
	ClearOnError bool

	Debug   bool
	LogFile string `validate:"required_if=Debug true"`
	Editor  string
}

// Overrides carries values given on the command line. Empty strings mean
// "not set" and fall through to the environment.
type Overrides struct {
	Endpoint     string
	FilterStyle  string
	Render       string
	ContractFile string
	Debug        bool
}

// Load resolves configuration: flags, then environment, then an optional
// .env file in the working directory, then defaults.
func Load(o Overrides) (Config, error) {
	// A missing .env is normal; real env vars are never overwritten.
	_ = godotenv.Load()

	cfg := Config{
		Endpoint:     firstNonEmpty(o.Endpoint, getEnv("BFHL_ENDPOINT", DefaultEndpoint)),
		FilterStyle:  strings.ToLower(firstNonEmpty(o.FilterStyle, getEnv("BFHL_FILTER_STYLE", string(model.StyleDropdown)))),
		Render:       strings.ToLower(firstNonEmpty(o.Render, getEnv("BFHL_RENDER", string(model.RenderLines)))),
		ContractFile: firstNonEmpty(o.ContractFile, getEnv("BFHL_CONTRACT", "")),
		ClearOnError: getEnv("BFHL_CLEAR_ON_ERROR", "") == "1",
		Debug:        o.Debug || getEnv("BFHL_DEBUG", "") == "1",
		LogFile:      getEnv("BFHL_LOG_FILE", filepath.Join(os.TempDir(), "bfhlform.log")),
		Editor:       firstNonEmpty(getEnv("BFHL_EDITOR", ""), getEnv("EDITOR", "")),
	}
	cfg.Endpoint = normalizeEndpoint(cfg.Endpoint)
	if cfg.ContractFile != "" {
		if abs, err := filepath.Abs(cfg.ContractFile); err == nil {
			cfg.ContractFile = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config %s=%v (%s)", fe.Field(), fe.Value(), fe.Tag())
		}
		return err
	}
	return nil
}

func (c Config) Style() model.FilterStyle { return model.FilterStyle(c.FilterStyle) }

func (c Config) RenderMode() model.RenderMode { return model.RenderMode(c.Render) }

func normalizeEndpoint(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		return in
	}
	return "http://" + in
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}
