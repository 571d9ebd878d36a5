package enum

import (
	"strings"
	"sync"
)

// registry is the global enum alias registry: enum full name -> lower-cased
// alias -> declared value name.
var (
	registry = make(map[string]map[string]string)
	mu       sync.RWMutex
)

// Register registers aliases for the values of one enum.
// enumName: the enum's full name (e.g., "acme.scan.ScanType")
// aliases: map of alias to declared value name (e.g., {"syn": "SYN_SCAN"})
func Register(enumName string, aliases map[string]string) {
	mu.Lock()
	defer mu.Unlock()

	if registry[enumName] == nil {
		registry[enumName] = make(map[string]string)
	}

	// Store aliases with lowercase keys for case-insensitive lookup
	for alias, valueName := range aliases {
		registry[enumName][strings.ToLower(alias)] = valueName
	}
}

// RegisterBatch registers aliases for several enums at once.
// enumAliases: map of enum full names to their aliases
func RegisterBatch(enumAliases map[string]map[string]string) {
	for enumName, aliases := range enumAliases {
		Register(enumName, aliases)
	}
}

// Resolve returns the declared value name registered for label on enumName.
// Matching is case-insensitive.
func Resolve(enumName, label string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()

	aliases, ok := registry[enumName]
	if !ok {
		return "", false
	}
	valueName, ok := aliases[strings.ToLower(label)]
	return valueName, ok
}

// Normalize returns the declared value name for label, or label unchanged
// when no alias is registered.
func Normalize(enumName, label string) string {
	if valueName, ok := Resolve(enumName, label); ok {
		return valueName
	}
	return label
}

// GetMappings returns all aliases registered for enumName.
// Returns nil if the enum has no registered aliases.
func GetMappings(enumName string) map[string]string {
	mu.RLock()
	defer mu.RUnlock()

	aliases, exists := registry[enumName]
	if !exists {
		return nil
	}

	// Return a copy to prevent external modifications
	result := make(map[string]string, len(aliases))
	for alias, valueName := range aliases {
		result[alias] = valueName
	}
	return result
}

// Clear resets the entire alias registry.
// This is primarily useful for testing.
func Clear() {
	mu.Lock()
	defer mu.Unlock()

	registry = make(map[string]map[string]string)
}
