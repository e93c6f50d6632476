package utils

import "github.com/go-playground/validator/v10"

// Validate — общий инстанс валидатора для DTO запросов.
var Validate = validator.New()
