/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cadlock

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/types"
)

// Regular expressions for basic validation
var (
	namePattern   = regexp.MustCompile(`^[A-Za-z0-9_\-\.]+$`)
	suffixPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

// ValidateProfileSyntax checks the syntax of each BuildProfile field.
func ValidateProfileSyntax(p *types.BuildProfile) error {
	var errs []string

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "name must be non-empty")
	} else if !namePattern.MatchString(p.Name) {
		errs = append(errs, fmt.Sprintf("invalid name %q: only letters, digits, '.', '-' and '_' are allowed", p.Name))
	}

	if p.Suffix != "" && !suffixPattern.MatchString(p.Suffix) {
		errs = append(errs, fmt.Sprintf("invalid suffix %q: only letters, digits, '-' and '_' are allowed", p.Suffix))
	}

	if p.MaxLaunches < 0 {
		errs = append(errs, "max_launches must be non-negative, use 0 for unlimited")
	}

	if _, err := codec.ParseFlagNames(p.Flags); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("profile validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
