package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wspsolver/pkg/model"
)

func TestLoadConfig(t *testing.T) {
	//** Arrange
	content := []byte(`instances:
  - test/instances/*.txt
  - test/instances/extra.json
encoders: [direct, symmetry]
solvers: [gini]
solutions: 5
timeout: 30s
output: out.csv
`)

	//** Act
	config, options, err := loadConfig(content)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"test/instances/*.txt", "test/instances/extra.json"}, config.Instances)
	assert.Equal(t, []string{"direct", "symmetry"}, config.Encoders)
	assert.Equal(t, []string{"gini"}, config.Solvers)
	assert.Equal(t, "out.csv", config.Output)
	assert.Equal(t, model.Options{MaxSolutions: 5, Deadline: 30 * time.Second}, options)
}

func TestLoadConfigDefaults(t *testing.T) {
	//** Act
	config, options, err := loadConfig([]byte("instances: [instances/*.txt]\n"))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, model.EncoderNames(), config.Encoders)
	assert.Equal(t, []string{"gini"}, config.Solvers)
	assert.Equal(t, "benchmark_results.csv", config.Output)
	assert.Equal(t, model.Options{}, options)
}

func TestLoadConfigRejections(t *testing.T) {
	cases := []struct {
		name    string
		content string
		reason  string
	}{
		{
			name:    "no instances",
			content: "solvers: [gini]\n",
			reason:  "at least one instance pattern is required",
		},
		{
			name:    "unknown encoder",
			content: "instances: [a.txt]\nencoders: [quantum]\n",
			reason:  "quantum is not a valid encoder",
		},
		{
			name:    "unknown solver",
			content: "instances: [a.txt]\nsolvers: [chaff]\n",
			reason:  "chaff is not a valid solver",
		},
		{
			name:    "malformed timeout",
			content: "instances: [a.txt]\ntimeout: soon\n",
			reason:  "malformed timeout",
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			//** Act
			_, _, err := loadConfig([]byte(testCase.content))

			//** Assert
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.reason)
		})
	}
}
