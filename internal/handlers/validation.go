package handlers

import (
	"fmt"
	"sync"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the ledger's custom binding tags to gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("ledger_source", validateLedgerSource)
	})
	return err
}

// validateLedgerSource accepts only the known producer modules.
func validateLedgerSource(fl validator.FieldLevel) bool {
	return domain.EntrySource(fl.Field().String()).IsValid()
}
