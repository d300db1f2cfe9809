package dryrun

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests spawn a fresh copy of the test binary (see testmain_test.go) so
// the sync.Once guard reads the environment afresh.

func isRequestedInChild(t *testing.T, extraEnv ...string) string {
	t.Helper()
	//#nosec G204 -- os.Args[0] is the test binary itself, not user input.
	cmd := exec.Command(os.Args[0], "-printIsRequested")
	cmd.Env = append(os.Environ(), extraEnv...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "subprocess output: %s", out)
	return strings.TrimSpace(string(out))
}

func TestIsRequestedFromEnv(t *testing.T) {
	assert.Equal(t, "true", isRequestedInChild(t, RequestedEnv+"=1"))
	assert.Equal(t, "true", isRequestedInChild(t, RequestedEnv+"=yes"))
}

func TestIsRequestedFalsyEnv(t *testing.T) {
	assert.Equal(t, "false", isRequestedInChild(t, RequestedEnv+"=0"))
	assert.Equal(t, "false", isRequestedInChild(t, RequestedEnv+"=bogus"))
}

func TestSetRequested(t *testing.T) {
	t.Cleanup(func() { SetRequested(false) })

	SetRequested(true)
	assert.True(t, IsRequested())
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, "/lib/cargokit", "./build_ohos.sh"))
	assert.Equal(t, "DRYRUN: (in /lib/cargokit) ./build_ohos.sh\n", buf.String())

	buf.Reset()
	require.NoError(t, Report(&buf, `C:\lib\cargokit`, "cmd.exe", "/C", `.\build_ohos.bat`))
	assert.Equal(t, "DRYRUN: (in C:\\lib\\cargokit) cmd.exe /C .\\build_ohos.bat\n", buf.String())

	require.NoError(t, Report(nil, "/x", "y"))
}
