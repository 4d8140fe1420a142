package sandbox

import (
	"fmt"
	"strings"
)

// Validation is the outcome of static script validation.
type Validation struct {
	OK bool
	// Reason explains the rejection when OK is false.
	Reason string
	// Warnings are non-blocking observations (long body, unicode
	// escapes) surfaced for content review.
	Warnings []string
}

// Validate statically checks a script body against the sandbox's
// security configuration. A rejected script is never executed.
func (s *Sandbox) Validate(src string) Validation {
	lowered := strings.ToLower(src)

	for _, pattern := range s.cfg.ForbiddenPatterns {
		if strings.Contains(lowered, strings.ToLower(pattern)) {
			return Validation{
				Reason: fmt.Sprintf("forbidden pattern %q", pattern),
			}
		}
	}

	compact := strings.Join(strings.Fields(lowered), " ")
	for _, pattern := range s.cfg.LoopPatterns {
		if strings.Contains(compact, pattern) {
			return Validation{
				Reason: fmt.Sprintf("potential infinite loop %q", pattern),
			}
		}
	}

	var warnings []string
	if s.cfg.WarnSourceBytes > 0 && len(src) > s.cfg.WarnSourceBytes {
		warnings = append(warnings, fmt.Sprintf("script body is %d bytes", len(src)))
	}
	if strings.Contains(src, `\u`) {
		warnings = append(warnings, "script contains unicode escapes")
	}

	return Validation{OK: true, Warnings: warnings}
}
