package prompt

import (
	"context"
	"errors"

	"github.com/goliatone/go-formflow/pkg/navigation"
)

// AsConfirmer adapts driver to the blocking yes/no primitive. The default
// answer is no, so pressing enter never discards work.
func AsConfirmer(driver Driver) navigation.Confirmer {
	return navigation.ConfirmFunc(func(ctx context.Context, message string) (bool, error) {
		if driver == nil {
			return false, errors.New("prompt: driver is required")
		}
		return driver.Confirm(ctx, ConfirmConfig{Message: message})
	})
}
