package service

import (
	"errors"
	"fmt"

	"movie-tracker/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput 校验结构体，首个失败字段按 messages 转换为校验错误
// messages 的键为 "Field.tag" 或 "Field"
func validateInput(input interface{}, messages map[string]string) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation(err.Error())
	}

	first := fieldErrs[0]
	if msg, ok := messages[first.Field()+"."+first.Tag()]; ok {
		return apperr.Validation(msg)
	}
	if msg, ok := messages[first.Field()]; ok {
		return apperr.Validation(msg)
	}
	return apperr.Validation(fmt.Sprintf("%s is invalid.", first.Field()))
}
