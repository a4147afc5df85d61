// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExecutionFlagValues reports shared execution flag states resolved from a command invocation.
type ExecutionFlagValues struct {
	DryRun    bool
	DryRunSet bool
}

// BindDryRunFlag attaches the shared dry-run toggle to the command's local flag set.
func BindDryRunFlag(command *cobra.Command, defaultValue bool) *bool {
	target := new(bool)
	if command == nil {
		return target
	}
	AddToggleFlag(command.Flags(), target, DryRunFlagName, "", defaultValue, DryRunFlagUsage)
	return target
}

// ResolveExecutionFlags inspects the command's local and inherited flag sets for
// shared execution flags. The boolean result reports whether the dry-run flag
// was registered on any reachable flag set.
func ResolveExecutionFlags(command *cobra.Command) (ExecutionFlagValues, bool) {
	if command == nil {
		return ExecutionFlagValues{}, false
	}

	flagSets := []*pflag.FlagSet{command.Flags(), command.InheritedFlags()}
	for _, flagSet := range flagSets {
		if flagSet == nil {
			continue
		}
		dryRunFlag := flagSet.Lookup(DryRunFlagName)
		if dryRunFlag == nil {
			continue
		}
		dryRunValue, parseError := flagSet.GetBool(DryRunFlagName)
		if parseError != nil {
			continue
		}
		return ExecutionFlagValues{DryRun: dryRunValue, DryRunSet: dryRunFlag.Changed}, true
	}

	return ExecutionFlagValues{}, false
}
