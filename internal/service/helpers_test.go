package service

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func newValidator() *validator.Validate {
	return validator.New()
}
