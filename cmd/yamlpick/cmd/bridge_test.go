package cmd

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeCmd_ServesStdio(t *testing.T) {
	isolateEnv(t)
	root := newWorkspace(t)

	// Given: a ping and a status request on stdin
	stdin := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"status"}` + "\n"

	// When: the bridge runs until stdin is exhausted
	stdout, _, err := runCLI(t, stdin, "bridge", "--dir", root, "--no-watch")

	// Then: both requests are answered on stdout, one JSON line each
	require.NoError(t, err)
	var lines []map[string]any
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		var resp map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp), sc.Text())
		lines = append(lines, resp)
	}
	require.Len(t, lines, 2)

	assert.Equal(t, map[string]any{"pong": true}, lines[0]["result"])

	status, ok := lines[1]["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, root, status["root"])
	assert.Equal(t, false, status["watching"])
}

func TestBridgeCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	bridgeCmd, _, err := cmd.Find([]string{"bridge"})
	require.NoError(t, err)

	assert.NotNil(t, bridgeCmd.Flags().Lookup("socket"))
	assert.NotNil(t, bridgeCmd.Flags().Lookup("no-watch"))
	assert.NotNil(t, bridgeCmd.Flags().Lookup("dir"))
}

func TestServeCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	assert.NotNil(t, serveCmd.Flags().Lookup("no-watch"))
	assert.NotNil(t, serveCmd.Flags().Lookup("dir"))
}
