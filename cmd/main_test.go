package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"awsdocs/configuration"
	"awsdocs/errors"
)

func TestSelectServices(t *testing.T) {
	configured := configuration.DefaultServices()

	tests := []struct {
		name          string
		configured    []configuration.ServiceConfig
		names         []string
		expected      []string
		expectedError errors.ErrorType
	}{
		{
			name:       "all services",
			configured: configured,
			expected:   []string{"ec2", "network", "s3", "security-groups", "auth"},
		},
		{
			name:       "subset keeps configured order",
			configured: configured,
			names:      []string{"auth", "ec2"},
			expected:   []string{"ec2", "auth"},
		},
		{
			name:          "unknown service",
			configured:    configured,
			names:         []string{"lambda"},
			expectedError: errors.ErrConfigInvalid,
		},
		{
			name:          "nothing enabled",
			configured:    nil,
			expectedError: errors.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectServices(tt.configured, tt.names)
			if tt.expectedError != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError))
				return
			}
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, svc := range got {
				names = append(names, svc.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestRunServers_ShutdownOnCancel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	servers := []*http.Server{
		{Addr: "127.0.0.1:0", Handler: handler},
		{Addr: "127.0.0.1:0", Handler: handler},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServers(ctx, servers, time.Second, zap.NewNop())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServers did not return after cancel")
	}
}

func TestRunServers_ListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	servers := []*http.Server{{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}}

	err = runServers(context.Background(), servers, time.Second, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), busy.Addr().String())
}

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestServeCommand_UnknownService(t *testing.T) {
	t.Setenv("SERVICES_FILE", t.TempDir()+"/absent.hcl")
	root := newRootCommand()
	root.SetArgs([]string{"serve", "lambda"})

	err := root.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}
