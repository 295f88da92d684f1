package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hamed0406/pinger/internal/domain"
)

func TestNew_KeepsOrderAndDefaultsProtocol(t *testing.T) {
	t.Parallel()

	r, err := New([]domain.Endpoint{
		{Name: "b", URL: "https://b.example.com"},
		{Name: "a", URL: "http://a.example.com/health", Protocol: "HTTPS"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	eps := r.Endpoints()
	require.Equal(t, "b", eps[0].Name)
	require.Equal(t, DefaultProtocol, eps[0].Protocol)
	require.Equal(t, "HTTPS", eps[1].Protocol)

	// Callers get a copy.
	eps[0].Name = "changed"
	require.Equal(t, "b", r.Endpoints()[0].Name)
}

func TestNew_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	_, err := New([]domain.Endpoint{
		{Name: "", URL: "https://ok.example.com"},
		{Name: "dup", URL: "ftp://files.example.com"},
		{Name: "dup", URL: "https://"},
		{Name: "other", URL: "https://ok.example.com"},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidRegistry)

	msg := err.Error()
	require.Contains(t, msg, "endpoint 0: name is empty")
	require.Contains(t, msg, "scheme must be http or https")
	require.Contains(t, msg, `name "dup" already used`)
	require.Contains(t, msg, "missing host")
	require.Contains(t, msg, `url "https://ok.example.com" already used`)
}

func TestLoad_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "endpoints.yaml",
			content: `endpoints:
  - name: Google
    url: https://www.google.com
    protocol: HTTP
  - name: API Server
    url: http://10.0.0.1
`,
		},
		{
			name: "toml",
			file: "endpoints.toml",
			content: `[[endpoints]]
name = "Google"
url = "https://www.google.com"
protocol = "HTTP"

[[endpoints]]
name = "API Server"
url = "http://10.0.0.1"
`,
		},
		{
			name:    "json",
			file:    "endpoints.json",
			content: `{"endpoints":[{"name":"Google","url":"https://www.google.com","protocol":"HTTP"},{"name":"API Server","url":"http://10.0.0.1"}]}`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tc.file)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			r, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, []domain.Endpoint{
				{Name: "Google", URL: "https://www.google.com", Protocol: "HTTP"},
				{Name: "API Server", URL: "http://10.0.0.1", Protocol: DefaultProtocol},
			}, r.Endpoints())
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	ini := filepath.Join(dir, "endpoints.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))
	_, err = Load(ini)
	require.ErrorIs(t, err, ErrInvalidRegistry)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("endpoints: []\n"), 0o644))
	_, err = Load(empty)
	require.ErrorIs(t, err, ErrInvalidRegistry)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	_, err = Load(broken)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	r := Default()
	require.NotNil(t, r)
	require.Positive(t, r.Len())
}

func TestLoad_ExampleFile(t *testing.T) {
	t.Parallel()

	r, err := Load(filepath.Join("..", "..", "endpoints.example.yaml"))
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	eps := r.Endpoints()
	require.Equal(t, "Google", eps[0].Name)
	require.Equal(t, DefaultProtocol, eps[1].Protocol)
}
