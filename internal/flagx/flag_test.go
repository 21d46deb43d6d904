package flagx

import (
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The server parses -a/-d/-s/-t/... and the client -a/-t; both filter
// os.Args through FilterArgs first, so the cases below mirror those sets.
func TestFilterArgs(t *testing.T) {
	serverFlags := []string{"-a", "-d", "-s", "-t", "-r", "-w", "-l"}
	clientFlags := []string{"-a", "-t"}

	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "bind address with separate value",
			args:         []string{"-a", ":8080", "-c", "keepsake.json"},
			allowedFlags: serverFlags,
			want:         []string{"-a", ":8080"},
		},
		{
			name:         "dsn in equals form",
			args:         []string{"-d=postgres://keepsake:pw@localhost/keepsake", "-c", "keepsake.json"},
			allowedFlags: serverFlags,
			want:         []string{"-d=postgres://keepsake:pw@localhost/keepsake"},
		},
		{
			name:         "client drops server-only flags, preserves order",
			args:         []string{"-d", "postgres://localhost/keepsake", "-a", "http://127.0.0.1:8080", "-t", "15"},
			allowedFlags: clientFlags,
			want:         []string{"-a", "http://127.0.0.1:8080", "-t", "15"},
		},
		{
			name:         "config-only invocation yields nothing for the server set",
			args:         []string{"-c", "keepsake.json", "-config", "alt.json", "positional"},
			allowedFlags: serverFlags,
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept as-is",
			args:         []string{"-s"},
			allowedFlags: serverFlags,
			want:         []string{"-s"},
		},
		{
			name:         "next flag is not consumed as a value",
			args:         []string{"-a", "-t", "30"},
			allowedFlags: clientFlags,
			want:         []string{"-a", "-t", "30"},
		},
		{
			name:         "equals form may carry a dash-starting value",
			args:         []string{"-a=--weird"},
			allowedFlags: clientFlags,
			want:         []string{"-a=--weird"},
		},
		{
			name:         "token validities and sweep interval all kept",
			args:         []string{"-t", "15", "-r", "10080", "-w", "60", "-x", "1"},
			allowedFlags: serverFlags,
			want:         []string{"-t", "15", "-r", "10080", "-w", "60"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: serverFlags,
			want:         []string{},
		},
		{
			name:         "repeated flag is preserved in order",
			args:         []string{"-l", "postgres", "-l", "s3"},
			allowedFlags: serverFlags,
			want:         []string{"-l", "postgres", "-l", "s3"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"keepsake", "-c", "/etc/keepsake/server.json"}
		assert.Equal(t, "/etc/keepsake/server.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"keepsake", "-config", "/etc/keepsake/client.json"}
		assert.Equal(t, "/etc/keepsake/client.json", JsonConfigFlags())
	})

	t.Run("ignores the services' own flags", func(t *testing.T) {
		os.Args = []string{"keepsake", "-a", ":8080", "-d", "postgres://localhost/keepsake"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"keepsake", "-c", "/tmp/one.json", "-config", "/tmp/two.json"}
		assert.Equal(t, "/tmp/two.json", JsonConfigFlags())
	})
}
