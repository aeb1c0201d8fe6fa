package sat

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// ConfigPath points to an optional JSON file mapping backend names to
// executable paths. When unset, or when the file does not mention a
// backend, the backend is resolved through PATH by its own name.
var ConfigPath = ""

func executablePath(name string) (string, error) {
	if ConfigPath == "" {
		return name, nil
	}

	content, err := os.ReadFile(ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return name, nil
		}
		return "", fmt.Errorf("cannot read solver configuration: %v", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(content, &rawConfig); err != nil {
		return "", fmt.Errorf("cannot parse solver configuration: %v", err)
	}
	var config map[string]string
	if err := mapstructure.Decode(rawConfig, &config); err != nil {
		return "", fmt.Errorf("invalid solver configuration: %v", err)
	}

	path, ok := config[name]
	if !ok {
		return name, nil
	}
	return path, nil
}
