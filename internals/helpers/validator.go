// file: internals/helpers/validator.go
package helper

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct chạy validator.v10 trên DTO; trả map field -> tag lỗi.
func ValidateStruct(s any) map[string][]string {
	if err := validate.Struct(s); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			out := make(map[string][]string, len(ve))
			for _, fe := range ve {
				out[fe.Field()] = append(out[fe.Field()], fe.Tag())
			}
			return out
		}
		return map[string][]string{"_": {"invalid input"}}
	}
	return nil
}
