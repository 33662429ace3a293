package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	tests := []struct {
		name  string
		input string
		env   map[string]string
		want  string
	}{
		{
			name:  "simple substitution",
			input: "api_key: {{.ANTHROPIC_API_KEY}}",
			env:   map[string]string{"ANTHROPIC_API_KEY": "sk-test-123"},
			want:  "api_key: sk-test-123",
		},
		{
			name:  "literal ${VAR} is not expanded",
			input: "pattern: ${USER_ID}",
			env:   map[string]string{"USER_ID": "123"},
			want:  "pattern: ${USER_ID}",
		},
		{
			name:  "multiple substitutions in one line",
			input: "dsn: {{.DB_HOST}}:{{.DB_PORT}}",
			env:   map[string]string{"DB_HOST": "localhost", "DB_PORT": "5432"},
			want:  "dsn: localhost:5432",
		},
		{
			name:  "missing variable expands to empty",
			input: "password: {{.MISSING_VAR}}",
			env:   map[string]string{},
			want:  "password: ",
		},
		{
			name:  "literal dollar in password preserved",
			input: "password: p@ss$word",
			env:   map[string]string{},
			want:  "password: p@ss$word",
		},
		{
			name:  "nested YAML structure",
			input: "database:\n  host: {{.DB_HOST}}\n  port: {{.DB_PORT}}",
			env:   map[string]string{"DB_HOST": "db.internal", "DB_PORT": "5432"},
			want:  "database:\n  host: db.internal\n  port: 5432",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, string(ExpandEnv([]byte(tt.input))))
		})
	}
}

func TestExpandEnvMalformedTemplatePassesThrough(t *testing.T) {
	t.Setenv("API_KEY", "should-not-appear")

	inputs := []string{
		"api_key: {{.API_KEY",
		"api_key: {{",
		"key: {{}}",
	}
	for _, in := range inputs {
		result := ExpandEnv([]byte(in))
		assert.Equal(t, in, string(result), "malformed template must pass through unchanged")
		assert.NotContains(t, string(result), "should-not-appear")
	}
}

func TestExpandEnvEmptyInput(t *testing.T) {
	assert.Equal(t, "", string(ExpandEnv(nil)))
}
