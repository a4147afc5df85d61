package settings

import (
	"context"
	"errors"
	"strings"

	"github.com/kalifudge401/worktree-rainbow/internal/palette"
)

// CustomizationSectionKey names the settings object that hosts the managed
// window chrome keys.
const CustomizationSectionKey = "workbench.colorCustomizations"

const (
	titleBarActiveBackgroundKeyConstant   = "titleBar.activeBackground"
	titleBarActiveForegroundKeyConstant   = "titleBar.activeForeground"
	titleBarInactiveBackgroundKeyConstant = "titleBar.inactiveBackground"
	titleBarInactiveForegroundKeyConstant = "titleBar.inactiveForeground"
	statusBarBackgroundKeyConstant        = "statusBar.background"
	statusBarForegroundKeyConstant        = "statusBar.foreground"
	settingsPathRequiredMessageConstant   = "settings document path is required"
)

// ErrSettingsPathRequired indicates a Merger was constructed without a path.
var ErrSettingsPathRequired = errors.New(settingsPathRequiredMessageConstant)

// ManagedSettingsKeys lists the customization keys this tool owns. No other
// key inside the customization section is ever written or removed.
func ManagedSettingsKeys() []string {
	return []string{
		titleBarActiveBackgroundKeyConstant,
		titleBarActiveForegroundKeyConstant,
		titleBarInactiveBackgroundKeyConstant,
		titleBarInactiveForegroundKeyConstant,
		statusBarBackgroundKeyConstant,
		statusBarForegroundKeyConstant,
	}
}

// WorkspacePalette holds the six chrome values projected into a workspace.
type WorkspacePalette struct {
	TitleBarActiveBackground   palette.Color
	TitleBarActiveForeground   palette.Color
	TitleBarInactiveBackground palette.Color
	TitleBarInactiveForeground palette.Color
	StatusBarBackground        palette.Color
	StatusBarForeground        palette.Color
}

func (workspacePalette WorkspacePalette) managedValues() map[string]string {
	return map[string]string{
		titleBarActiveBackgroundKeyConstant:   workspacePalette.TitleBarActiveBackground.Hex(),
		titleBarActiveForegroundKeyConstant:   workspacePalette.TitleBarActiveForeground.Hex(),
		titleBarInactiveBackgroundKeyConstant: workspacePalette.TitleBarInactiveBackground.Hex(),
		titleBarInactiveForegroundKeyConstant: workspacePalette.TitleBarInactiveForeground.Hex(),
		statusBarBackgroundKeyConstant:        workspacePalette.StatusBarBackground.Hex(),
		statusBarForegroundKeyConstant:        workspacePalette.StatusBarForeground.Hex(),
	}
}

// ManagedEntry pairs one managed settings key with its rendered value.
type ManagedEntry struct {
	Key   string
	Value string
}

// ManagedEntries returns the managed key/value pairs in stable render order.
func (workspacePalette WorkspacePalette) ManagedEntries() []ManagedEntry {
	managedValues := workspacePalette.managedValues()
	orderedEntries := make([]ManagedEntry, 0, len(managedValues))
	for _, managedKey := range ManagedSettingsKeys() {
		orderedEntries = append(orderedEntries, ManagedEntry{Key: managedKey, Value: managedValues[managedKey]})
	}
	return orderedEntries
}

// Merger projects managed palette keys into one workspace settings document
// while leaving every other key untouched. Concurrent writers to the same
// document interleave whole read-modify-write cycles; the last write wins.
type Merger struct {
	settingsPath string
}

// NewMerger constructs a Merger bound to the provided settings document.
func NewMerger(settingsPath string) (*Merger, error) {
	trimmedPath := strings.TrimSpace(settingsPath)
	if len(trimmedPath) == 0 {
		return nil, ErrSettingsPathRequired
	}
	return &Merger{settingsPath: trimmedPath}, nil
}

// SettingsPath reports the document this merger writes to.
func (merger *Merger) SettingsPath() string {
	return merger.settingsPath
}

// ApplyPalette replaces the managed keys inside the customization section
// with the palette's values, creating the section when absent. All six keys
// land in one document save.
func (merger *Merger) ApplyPalette(executionContext context.Context, workspacePalette WorkspacePalette) error {
	document, loadError := LoadDocument(merger.settingsPath)
	if loadError != nil {
		return loadError
	}

	customizationSection := customizationSectionOf(document)
	for managedKey, managedValue := range workspacePalette.managedValues() {
		customizationSection[managedKey] = managedValue
	}
	document[CustomizationSectionKey] = customizationSection

	return SaveDocument(merger.settingsPath, document)
}

// ClearManaged removes exactly the managed keys from the customization
// section. A section left empty is removed outright rather than kept as an
// empty object, and a document left empty removes the settings file.
// Clearing an absent document is a no-op.
func (merger *Merger) ClearManaged(executionContext context.Context) error {
	document, loadError := LoadDocument(merger.settingsPath)
	if loadError != nil {
		return loadError
	}
	if len(document) == 0 {
		return nil
	}

	existingSection, sectionExists := document[CustomizationSectionKey]
	if !sectionExists {
		return nil
	}

	sectionObject, sectionIsObject := existingSection.(map[string]any)
	if !sectionIsObject {
		// A foreign value under the section key is not ours to remove.
		return nil
	}

	for _, managedKey := range ManagedSettingsKeys() {
		delete(sectionObject, managedKey)
	}

	if len(sectionObject) == 0 {
		delete(document, CustomizationSectionKey)
	} else {
		document[CustomizationSectionKey] = sectionObject
	}

	return SaveDocument(merger.settingsPath, document)
}

func customizationSectionOf(document Document) map[string]any {
	existingSection, sectionExists := document[CustomizationSectionKey]
	if !sectionExists {
		return map[string]any{}
	}
	sectionObject, sectionIsObject := existingSection.(map[string]any)
	if !sectionIsObject {
		// Unexpected value types are replaced, not merged into.
		return map[string]any{}
	}
	return sectionObject
}
