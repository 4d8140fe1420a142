package sandbox

import "time"

// Config is the immutable security configuration injected into a
// Sandbox. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// ForbiddenPatterns are substrings that reject a script outright
	// during static validation, before any execution.
	ForbiddenPatterns []string
	// LoopPatterns are trivial infinite-loop literals rejected during
	// static validation.
	LoopPatterns []string
	// WarnSourceBytes triggers a non-blocking warning for very long
	// script bodies.
	WarnSourceBytes int
	// Deadline is the hard wall-clock budget for one execution. When
	// it expires the caller is unblocked immediately and the runaway
	// interpreter is abandoned.
	Deadline time.Duration
}

// DefaultConfig returns the standard security configuration.
//
// The deny list covers host access (os, io, files), dynamic code
// loading, environment escape hatches, and metatable manipulation.
// It is defense in depth: the primary guarantee is that the sandbox
// never opens those libraries in the first place.
func DefaultConfig() Config {
	return Config{
		ForbiddenPatterns: []string{
			"os.",
			"io.",
			"require",
			"dofile",
			"loadfile",
			"loadstring",
			"load(",
			"load (",
			"eval(",
			"package.",
			"debug.",
			"coroutine.",
			"collectgarbage",
			"setmetatable",
			"getmetatable",
			"rawset",
			"rawget",
			"rawequal",
			"string.dump",
			"_G",
			"socket",
			"http",
		},
		LoopPatterns: []string{
			"while true do",
			"while(true)",
			"while (true)",
			"while(!0)",
			"repeat until false",
			"for(;;)",
			"for ;;",
		},
		WarnSourceBytes: 10000,
		Deadline:        100 * time.Millisecond,
	}
}
