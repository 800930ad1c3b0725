package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// IniFile represents a parsed INI file.
// It maps section names to a map of key-value pairs.
// Properties before any section are stored in the "" (empty string) section.
// Section and key names are lower-cased.
type IniFile struct {
	Sections map[string]map[string]string
}

// NewIniFile creates a new empty IniFile
func NewIniFile() *IniFile {
	return &IniFile{
		Sections: make(map[string]map[string]string),
	}
}

// ParseIni reads an INI file from an io.Reader.
// Lines that are neither a section header, a comment nor key=value are errors.
func ParseIni(r io.Reader) (*IniFile, error) {
	ini := NewIniFile()
	scanner := bufio.NewScanner(r)
	currentSection := ""
	ini.Sections[currentSection] = make(map[string]string)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if _, exists := ini.Sections[currentSection]; !exists {
				ini.Sections[currentSection] = make(map[string]string)
			}
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected key=value, got %q", lineNo, line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNo)
		}
		ini.Sections[currentSection][key] = unquote(strings.TrimSpace(val))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ini, nil
}

// GetSection returns the key-value map for a given section, or nil if not found
func (ini *IniFile) GetSection(sectionName string) map[string]string {
	return ini.Sections[strings.ToLower(sectionName)]
}

// Get returns a value and whether it was present.
func (ini *IniFile) Get(section, key string) (string, bool) {
	sec := ini.GetSection(section)
	if sec == nil {
		return "", false
	}
	v, ok := sec[strings.ToLower(key)]
	return v, ok
}

// unquote strips one pair of surrounding double quotes, so patterns and paths
// can carry leading or trailing spaces.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
