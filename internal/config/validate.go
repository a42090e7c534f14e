package config

import (
	"fmt"
	"strconv"
	"strings"

	tmpl "github.com/AntoineGS/ticklist/internal/template"
)

// Validate checks every field and reports all problems at once.
func (c *AppConfig) Validate() error {
	errs := &ValidationErrors{}

	switch c.JumpMode {
	case JumpMark, JumpScroll:
	default:
		errs.Add(NewFieldError("jump_mode", c.JumpMode,
			fmt.Errorf("%w: must be %q or %q", ErrInvalidConfig, JumpMark, JumpScroll)))
	}

	if strings.TrimSpace(c.StateDB) == "" {
		errs.Add(NewFieldError("state_db", c.StateDB, fmt.Errorf("%w: must not be empty", ErrInvalidConfig)))
	} else if strings.ContainsRune(c.StateDB, '\x00') {
		errs.Add(NewFieldError("state_db", c.StateDB, fmt.Errorf("%w: path contains null byte", ErrInvalidConfig)))
	}

	if c.HistoryLimit < 1 {
		errs.Add(NewFieldError("history_limit", strconv.Itoa(c.HistoryLimit),
			fmt.Errorf("%w: must be at least 1", ErrInvalidConfig)))
	}

	if _, err := tmpl.NewEngine(c.DetailTemplate); err != nil {
		errs.Add(NewFieldError("detail_template", c.DetailTemplate, fmt.Errorf("%w: %v", ErrInvalidConfig, err)))
	}

	if errs.HasErrors() {
		return errs
	}

	return nil
}
