package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	documentFileModeConstant            = 0o644
	documentDirectoryModeConstant       = 0o755
	documentIndentConstant              = "  "
	documentTemporaryPatternConstant    = "settings-*.json"
	readDocumentErrorTemplateConstant   = "failed to read settings document: %w"
	decodeDocumentErrorTemplateConstant = "failed to decode settings document: %w"
	writeDocumentErrorTemplateConstant  = "failed to write settings document: %w"
	removeDocumentErrorTemplateConstant = "failed to remove settings document: %w"
)

// Document is the decoded JSON object backing a workspace settings file.
type Document map[string]any

// LoadDocument reads the settings document at the given path. A missing
// file yields an empty document.
func LoadDocument(settingsPath string) (Document, error) {
	fileContent, readError := os.ReadFile(settingsPath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return Document{}, nil
		}
		return nil, fmt.Errorf(readDocumentErrorTemplateConstant, readError)
	}

	document := Document{}
	if unmarshalError := json.Unmarshal(fileContent, &document); unmarshalError != nil {
		return nil, fmt.Errorf(decodeDocumentErrorTemplateConstant, unmarshalError)
	}
	return document, nil
}

// SaveDocument writes the settings document through a temporary file and
// rename. An empty document removes the file instead, so a workspace whose
// settings existed only for this tool collapses back to its pristine state.
func SaveDocument(settingsPath string, document Document) error {
	if len(document) == 0 {
		removeError := os.Remove(settingsPath)
		if removeError != nil && !os.IsNotExist(removeError) {
			return fmt.Errorf(removeDocumentErrorTemplateConstant, removeError)
		}
		return nil
	}

	settingsDirectory := filepath.Dir(settingsPath)
	if directoryError := os.MkdirAll(settingsDirectory, documentDirectoryModeConstant); directoryError != nil {
		return fmt.Errorf(writeDocumentErrorTemplateConstant, directoryError)
	}

	encodedDocument, marshalError := json.MarshalIndent(document, "", documentIndentConstant)
	if marshalError != nil {
		return fmt.Errorf(writeDocumentErrorTemplateConstant, marshalError)
	}
	encodedDocument = append(encodedDocument, '\n')

	temporaryFile, temporaryError := os.CreateTemp(settingsDirectory, documentTemporaryPatternConstant)
	if temporaryError != nil {
		return fmt.Errorf(writeDocumentErrorTemplateConstant, temporaryError)
	}
	temporaryPath := temporaryFile.Name()

	if _, writeError := temporaryFile.Write(encodedDocument); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeDocumentErrorTemplateConstant, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeDocumentErrorTemplateConstant, closeError)
	}
	if chmodError := os.Chmod(temporaryPath, documentFileModeConstant); chmodError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeDocumentErrorTemplateConstant, chmodError)
	}
	if renameError := os.Rename(temporaryPath, settingsPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeDocumentErrorTemplateConstant, renameError)
	}
	return nil
}
