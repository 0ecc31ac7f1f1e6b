package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/germanamz/minirag/pkg/engine"
	"github.com/joho/godotenv"
)

const defaultInitModel = "gemini-2.0-flash"

// initValues are the settings collected by the init command.
type initValues struct {
	APIKey  string //nolint:gosec // user-supplied, written to the local .env only
	Model   string
	Backend string
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	envFile := fs.String("env", ".env", "path to the .env file to write")
	apiKey := fs.String("api-key", "", "API key (non-interactive)")
	model := fs.String("model", "", "model name (non-interactive)")
	backend := fs.String("backend", "", "backend kind: genai, rest or openai")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := initValues{APIKey: *apiKey, Model: *model, Backend: *backend}

	if v.APIKey == "" || v.Model == "" {
		if v.Model == "" {
			v.Model = defaultInitModel
		}
		if v.Backend == "" {
			v.Backend = engine.DefaultKind
		}
		if err := initForm(&v).Run(); err != nil {
			return err
		}
	}

	if err := writeEnvFile(*envFile, v.envMap()); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Wrote " + *envFile))
	fmt.Println(hintStyle.Render("Run 'minirag' to send your first prompt."))
	return nil
}

func initForm(v *initValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google API key").
				EchoMode(huh.EchoModePassword).
				Value(&v.APIKey).
				Validate(requireNonEmpty("API key")),
			huh.NewInput().
				Title("Model").
				Value(&v.Model).
				Validate(requireNonEmpty("model")),
			huh.NewSelect[string]().
				Title("Backend").
				Options(
					huh.NewOption("Google GenAI SDK", "genai"),
					huh.NewOption("REST (generateContent)", "rest"),
					huh.NewOption("OpenAI-compatible endpoint", "openai"),
				).
				Value(&v.Backend),
		),
	)
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (v initValues) envMap() map[string]string {
	backend := v.Backend
	if backend == "" {
		backend = engine.DefaultKind
	}

	// The backend is always written so a previous choice in the file is replaced.
	return map[string]string{
		engine.EnvAPIKey:  strings.TrimSpace(v.APIKey),
		engine.EnvModel:   strings.TrimSpace(v.Model),
		engine.EnvBackend: backend,
	}
}

// writeEnvFile merges values into the .env file at path, keeping unrelated
// entries that are already there.
func writeEnvFile(path string, values map[string]string) error {
	existing, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if existing == nil {
		existing = make(map[string]string, len(values))
	}

	for k, val := range values {
		existing[k] = val
	}

	if err := godotenv.Write(existing, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
