package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	swatchBlockConstant             = "  "
	missingColorPlaceholderConstant = "-"
	colorColumnHeaderConstant       = "COLOR"
	branchColumnHeaderConstant      = "BRANCH"
	stateColumnHeaderConstant       = "STATE"
	repositoryColumnHeaderConstant  = "REPOSITORY"
	hexColumnWidthConstant          = 7
)

var tableHeaderStyle = lipgloss.NewStyle().Bold(true)

// TableRenderer writes repository statuses as an aligned table. Swatch cells
// carry the assigned color as a terminal background; the hex value is printed
// alongside so the table stays readable without color support.
type TableRenderer struct {
	outputWriter io.Writer
}

// NewTableRenderer builds a renderer targeting the provided writer.
func NewTableRenderer(outputWriter io.Writer) *TableRenderer {
	return &TableRenderer{outputWriter: outputWriter}
}

// Render writes one row per status. Nothing is written for an empty list.
func (renderer *TableRenderer) Render(statuses []RepositoryStatus) error {
	if len(statuses) == 0 {
		return nil
	}

	branchColumnWidth := len(branchColumnHeaderConstant)
	stateColumnWidth := len(stateColumnHeaderConstant)
	for _, repositoryStatus := range statuses {
		branchDisplay := repositoryStatus.Branch.String()
		if len(branchDisplay) > branchColumnWidth {
			branchColumnWidth = len(branchDisplay)
		}
		if len(repositoryStatus.State) > stateColumnWidth {
			stateColumnWidth = len(repositoryStatus.State)
		}
	}

	var tableBuilder strings.Builder
	headerLine := fmt.Sprintf("%s %-*s  %-*s  %-*s  %s",
		strings.Repeat(" ", len(swatchBlockConstant)),
		hexColumnWidthConstant, colorColumnHeaderConstant,
		branchColumnWidth, branchColumnHeaderConstant,
		stateColumnWidth, stateColumnHeaderConstant,
		repositoryColumnHeaderConstant)
	tableBuilder.WriteString(tableHeaderStyle.Render(headerLine))
	tableBuilder.WriteString("\n")

	for _, repositoryStatus := range statuses {
		swatchCell := swatchBlockConstant
		colorCell := missingColorPlaceholderConstant
		if repositoryStatus.HasColor {
			colorHex := repositoryStatus.AssignedColor.Hex()
			swatchCell = lipgloss.NewStyle().Background(lipgloss.Color(colorHex)).Render(swatchBlockConstant)
			colorCell = colorHex
		}
		rowLine := fmt.Sprintf("%s %-*s  %-*s  %-*s  %s",
			swatchCell,
			hexColumnWidthConstant, colorCell,
			branchColumnWidth, repositoryStatus.Branch.String(),
			stateColumnWidth, string(repositoryStatus.State),
			repositoryStatus.RepositoryRoot)
		tableBuilder.WriteString(rowLine)
		tableBuilder.WriteString("\n")
	}

	_, writeError := io.WriteString(renderer.outputWriter, tableBuilder.String())
	return writeError
}
