// Package enum provides a global registry of enum label aliases.
//
// Reverse conversion resolves a textual enum value by trying the declared
// value name, then its upper-cased form, then the aliases registered here.
// This lets callers accept shorthand such as "syn" for SYN_SCAN.
//
// # Usage
//
// Register aliases for an enum by its full name:
//
//	enum.Register("acme.scan.ScanType", map[string]string{
//	    "syn": "SYN_SCAN",
//	    "udp": "UDP_SCAN",
//	})
//
// Or register several enums at once:
//
//	enum.RegisterBatch(map[string]map[string]string{
//	    "acme.scan.ScanType": {
//	        "syn": "SYN_SCAN",
//	        "udp": "UDP_SCAN",
//	    },
//	    "acme.scan.Timing": {
//	        "fast": "TIMING_FAST",
//	        "slow": "TIMING_SLOW",
//	    },
//	})
//
// # Thread Safety
//
// All operations are thread-safe and can be called concurrently from multiple
// goroutines. The registry uses sync.RWMutex for efficient concurrent access.
//
// # Case Insensitivity
//
// Aliases are matched case-insensitively, so "SYN", "syn", and "Syn" all
// resolve to the same value. The result is always the declared value name as
// registered.
package enum
