package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-ioc/framework/container"
)

func init() {
	color.NoColor = true
}

func sampleRegistrations() []container.Registration {
	return []container.Registration{
		{Index: 0, Service: "*config.Config", Kind: container.KindInstance, Lifecycle: container.Singleton},
		{Index: 1, Service: "sample.IB", Kind: container.KindType, Lifecycle: container.Transient},
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		bindingsFormat = "table"
		envFiles = nil
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestWriteBindings_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBindings(&buf, "table", sampleRegistrations()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"#", "SERVICE", "STRATEGY", "LIFECYCLE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "*config.Config", "instance", "singleton"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", "sample.IB", "type", "transient"}, strings.Fields(lines[2]))
}

func TestWriteBindings_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBindings(&buf, "json", sampleRegistrations()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "instance", got[0]["strategy"])
	assert.Equal(t, "transient", got[1]["lifecycle"])
	assert.NotContains(t, got[0], "Identity")
}

func TestWriteBindings_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBindings(&buf, "YAML", sampleRegistrations()))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "sample.IB", got[1]["service"])
	assert.Equal(t, "type", got[1]["strategy"])
}

func TestWriteBindings_UnknownFormat(t *testing.T) {
	err := writeBindings(&bytes.Buffer{}, "xml", nil)
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestBindingsCommand_ListsFrameworkProviders(t *testing.T) {
	out := execute(t, "bindings", "--env", "testdata/missing.env", "--format", "json")

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	var services []string
	for _, r := range got {
		services = append(services, r["service"].(string))
	}
	assert.Contains(t, services, "*github.com/km-arc/go-ioc/framework/config.Config")
	assert.Contains(t, services, "*go.uber.org/zap.Logger")
	assert.Contains(t, services, "*github.com/km-arc/go-ioc/framework/routing.Router")
}

func TestDemoCommand(t *testing.T) {
	out := execute(t, "demo")

	transient, singleton, ok := strings.Cut(out, "IB singleton")
	require.True(t, ok, "output: %s", out)

	assert.Contains(t, transient, "IB shared: no")
	assert.Contains(t, transient, "IC shared: yes")
	assert.Contains(t, transient, "IB disposed: yes")

	assert.Contains(t, singleton, "IA shared: no")
	assert.Contains(t, singleton, "IB shared: yes")
	assert.Contains(t, singleton, "IB disposed: yes")
	assert.Contains(t, singleton, "rejected: github.com/km-arc/go-ioc/cmd.demoX -> github.com/km-arc/go-ioc/cmd.demoY -> github.com/km-arc/go-ioc/cmd.demoX")
}
