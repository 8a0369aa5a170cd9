package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkStruct 用 validate 标签校验输入，第一个失败的字段转换为 ValidationError
func checkStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return ErrValidation(jsonName(fe.Field()), constraintText(fe))
	}
	return ErrValidation("request", err.Error())
}

func checkVar(field string, value interface{}, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return ErrValidation(field, constraintText(verrs[0]))
	}
	return ErrValidation(field, err.Error())
}

func constraintText(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "failed " + fe.Tag()
}

// jsonName FirstName -> first_name
func jsonName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// requireText 去掉首尾空白后不能为空，且不超过 max 个字符
func requireText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrValidation(field, "required")
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return "", ErrValidation(field, "too long")
	}
	return value, nil
}
