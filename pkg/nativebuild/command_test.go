package nativebuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommand_PosixScenario(t *testing.T) {
	cmd, err := BuildCommand(Other, "/proj/ohos/app", DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, "cd /proj/ohos/app/../../super_native_extensions/cargokit&&./build_ohos.sh&& cd -", cmd.String())
	assert.Equal(t, "/proj/ohos/app/../../super_native_extensions/cargokit", cmd.Dir)
	assert.Equal(t, "/proj/super_native_extensions/cargokit", cmd.ResolvedDir())
	assert.Equal(t, []string{"./build_ohos.sh"}, cmd.Argv())
}

func TestBuildCommand_WindowsScenario(t *testing.T) {
	cmd, err := BuildCommand(Windows, `C:\proj\ohos\app`, DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, `pushd C:\proj\ohos\app\..\..\super_native_extensions\cargokit && .\build_ohos.bat && popd`, cmd.String())
	assert.Equal(t, `C:\proj\super_native_extensions\cargokit`, cmd.ResolvedDir())
	assert.Equal(t, []string{"cmd.exe", "/C", `.\build_ohos.bat`}, cmd.Argv())
}

func TestBuildCommand_FamilyShape(t *testing.T) {
	posixPaths := []string{"/", "/a", "/deep/er/and/deeper/module", "/with space/app", "/x/../y"}
	for _, p := range posixPaths {
		cmd, err := BuildCommand(Other, p, DefaultLayout())
		require.NoError(t, err, p)
		s := cmd.String()
		assert.True(t, strings.HasPrefix(s, "cd "), s)
		assert.True(t, strings.HasSuffix(s, "&& cd -"), s)
		assert.Contains(t, s, ".sh")
		assert.NotContains(t, s, ".bat")
		assert.NotContains(t, cmd.Dir, `\`)
		assert.Equal(t, p+"/../../super_native_extensions/cargokit", cmd.Dir)
	}

	windowsPaths := []string{`C:\`, `D:\a`, `c:\deep\er\module`, `\\server\share\app`, `E:/mixed/app`}
	for _, p := range windowsPaths {
		cmd, err := BuildCommand(Windows, p, DefaultLayout())
		require.NoError(t, err, p)
		s := cmd.String()
		assert.True(t, strings.HasPrefix(s, "pushd "), s)
		assert.True(t, strings.HasSuffix(s, "&& popd"), s)
		assert.Contains(t, s, `.\build_ohos.bat`)
		assert.NotContains(t, s, ".sh")
		assert.Equal(t, p+`\..\..\super_native_extensions\cargokit`, cmd.Dir)
	}
}

func TestBuildCommand_CustomLayout(t *testing.T) {
	cmd, err := BuildCommand(Other, "/p/ohos/entry", Layout{LibraryDir: "my_lib"})
	require.NoError(t, err)
	assert.Equal(t, "/p/ohos/entry/../../my_lib/cargokit", cmd.Dir)

	cmd, err = BuildCommand(Other, "/p/ohos/entry", Layout{LibraryDir: "my_lib", ToolDir: "tools"})
	require.NoError(t, err)
	assert.Equal(t, "/p/my_lib/tools", cmd.ResolvedDir())
}

func TestBuildCommand_InvalidModulePath(t *testing.T) {
	tests := []struct {
		name   string
		family Family
		path   string
	}{
		{"empty posix", Other, ""},
		{"blank", Other, "   "},
		{"relative posix", Other, "ohos/app"},
		{"windows path on posix", Other, `C:\proj`},
		{"relative windows", Windows, `proj\app`},
		{"posix path on windows", Windows, "/proj/app"},
		{"drive without slash", Windows, "C:proj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCommand(tt.family, tt.path, DefaultLayout())
			require.ErrorIs(t, err, ErrInvalidModulePath)
		})
	}
}

func TestCleanDir_UNC(t *testing.T) {
	got := cleanDir(Windows, `\\srv\share\a\b\app\..\..\lib\cargokit`)
	assert.Equal(t, `\\srv\share\a\lib\cargokit`, got)
}
