package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestBindDryRunFlagDefaultsAndParsesToggleValues(t *testing.T) {
	command := &cobra.Command{}

	dryRun := BindDryRunFlag(command, false)

	require.NotNil(t, dryRun)
	require.False(t, *dryRun)

	parseError := command.ParseFlags([]string{"--" + DryRunFlagName + "=yes"})
	require.NoError(t, parseError)
	require.True(t, *dryRun)
}

func TestResolveExecutionFlagsReportsDryRunState(t *testing.T) {
	command := &cobra.Command{}
	BindDryRunFlag(command, false)

	values, available := ResolveExecutionFlags(command)
	require.True(t, available)
	require.False(t, values.DryRunSet)
	require.False(t, values.DryRun)

	parseError := command.ParseFlags([]string{"--" + DryRunFlagName})
	require.NoError(t, parseError)

	values, available = ResolveExecutionFlags(command)
	require.True(t, available)
	require.True(t, values.DryRunSet)
	require.True(t, values.DryRun)
}

func TestResolveExecutionFlagsWithoutBindingReportsUnavailable(t *testing.T) {
	values, available := ResolveExecutionFlags(&cobra.Command{})

	require.False(t, available)
	require.False(t, values.DryRunSet)
}
