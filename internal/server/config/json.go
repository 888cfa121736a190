package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/confidant/internal/flagx"
	"github.com/dmitrijs2005/confidant/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "60s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	Addr              string         `json:"addr"`
	UsersFile         string         `json:"users_file"`
	StorageBackend    string         `json:"storage_backend"`
	BoltPath          string         `json:"bolt_path"`
	SecretKey         string         `json:"secret_key"`
	SessionValidity   timex.Duration `json:"session_validity"`
	APIKey            string         `json:"api_key"`
	BaseURL           string         `json:"base_url"`
	Model             string         `json:"model"`
	CompletionTimeout timex.Duration `json:"completion_timeout"`
	UseMockLLM        bool           `json:"use_mock_llm"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.UsersFile = c.UsersFile
	config.StorageBackend = c.StorageBackend
	config.BoltPath = c.BoltPath
	config.SecretKey = c.SecretKey
	config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	config.APIKey = c.APIKey
	config.BaseURL = c.BaseURL
	config.Model = c.Model
	config.CompletionTimeout = time.Duration(c.CompletionTimeout.Duration)
	config.UseMockLLM = c.UseMockLLM
}
